package db

import (
	"io"
	"testing"

	"watchtower/internal/config"
	"watchtower/internal/model"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func TestOpenAndMigrate(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, URL: ":memory:"}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error opening db: %s", err)
	}
	defer Close(db)

	if err := Migrate(db, testLogger()); err != nil {
		t.Fatalf("unexpected error migrating: %s", err)
	}

	for _, m := range Models() {
		if !db.Migrator().HasTable(m) {
			t.Errorf("expected table for %T", m)
		}
	}

	cluster := model.Cluster{Name: "alpha"}
	if err := db.Create(&cluster).Error; err != nil {
		t.Fatalf("unexpected error creating cluster: %s", err)
	}

	node := model.NewNode("n1", cluster.ID)
	if err := db.Create(&node).Error; err != nil {
		t.Fatalf("unexpected error creating node: %s", err)
	}

	// the foreign key is enforced by the store as well
	orphan := model.NewNode("orphan", cluster.ID+100)
	if err := db.Create(&orphan).Error; err == nil {
		t.Error("expected foreign key violation for unknown cluster")
	}

	// and so is the cascade
	if err := db.Delete(&model.Cluster{}, cluster.ID).Error; err != nil {
		t.Fatalf("unexpected error deleting cluster: %s", err)
	}

	var count int64
	db.Model(&model.Node{}).Where("cluster_id = ?", cluster.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected nodes to be cascaded, found %d", count)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle", URL: "x"}, testLogger())
	if err == nil {
		t.Error("expected error for unsupported driver")
	}
}
