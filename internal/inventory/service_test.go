package inventory

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"watchtower/internal/config"
	"watchtower/internal/db"
	"watchtower/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

// steppingClock advances one second on every call
func steppingClock() func() time.Time {
	var mu sync.Mutex
	current := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	gormDB, err := db.Open(config.DatabaseConfig{Driver: config.DriverSQLite, URL: ":memory:"}, testLogger())
	if err != nil {
		t.Fatalf("unexpected error creating db: %s", err)
	}
	t.Cleanup(func() { db.Close(gormDB) })

	if err := db.Migrate(gormDB, testLogger()); err != nil {
		t.Fatalf("error migrating database: %s", err)
	}

	return NewService(gormDB, WithLogger(testLogger()), WithClock(steppingClock())), gormDB
}

func mustCreateCluster(t *testing.T, s *Service, name string) *model.Cluster {
	t.Helper()
	cluster := &model.Cluster{Name: name}
	if err := s.CreateCluster(context.Background(), cluster); err != nil {
		t.Fatalf("unexpected error creating cluster %s: %s", name, err)
	}
	return cluster
}

func mustCreateNode(t *testing.T, s *Service, name string, clusterID int) *model.Node {
	t.Helper()
	node := model.NewNode(name, clusterID)
	if err := s.CreateNode(context.Background(), &node); err != nil {
		t.Fatalf("unexpected error creating node %s: %s", name, err)
	}
	return &node
}

func TestCreateCluster(t *testing.T) {
	s, _ := newTestService(t)

	description := "edge racks"
	cluster := &model.Cluster{Name: "alpha", Description: &description}
	if err := s.CreateCluster(context.Background(), cluster); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if cluster.ID == 0 {
		t.Error("expected generated id")
	}
	if cluster.CreatedAt.IsZero() || !cluster.CreatedAt.Equal(cluster.UpdatedAt) {
		t.Errorf("expected created_at == updated_at, got %s and %s", cluster.CreatedAt, cluster.UpdatedAt)
	}
	if len(cluster.Nodes) != 0 {
		t.Errorf("expected no nodes, got %d", len(cluster.Nodes))
	}
	if model.StrVal(cluster.Description) != description {
		t.Errorf("expected description %q, got %q", description, model.StrVal(cluster.Description))
	}
}

func TestCreateCluster_DuplicateName(t *testing.T) {
	s, gormDB := newTestService(t)
	mustCreateCluster(t, s, "alpha")

	err := s.CreateCluster(context.Background(), &model.Cluster{Name: "alpha"})
	if !errors.Is(err, ErrClusterNameExists) {
		t.Fatalf("expected ErrClusterNameExists, got %v", err)
	}

	var count int64
	gormDB.Model(&model.Cluster{}).Where("name = ?", "alpha").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly one row, got %d", count)
	}
}

func TestCreateNode_UnknownCluster(t *testing.T) {
	s, gormDB := newTestService(t)

	node := model.NewNode("n1", 42)
	err := s.CreateNode(context.Background(), &node)
	if !errors.Is(err, ErrClusterNotFound) {
		t.Fatalf("expected ErrClusterNotFound, got %v", err)
	}

	var count int64
	gormDB.Model(&model.Node{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no node rows, got %d", count)
	}
}

func TestCreateNode_Defaults(t *testing.T) {
	s, _ := newTestService(t)
	cluster := mustCreateCluster(t, s, "alpha")

	node := mustCreateNode(t, s, "n1", cluster.ID)

	if node.SSHReachable || node.IsAlive {
		t.Error("expected ssh_reachable and is_alive to be false")
	}
	if !node.PassingUnitTests {
		t.Error("expected passing_unit_tests to be true")
	}
	if node.SSHPort != model.DefaultSSHPort {
		t.Errorf("expected ssh port %d, got %d", model.DefaultSSHPort, node.SSHPort)
	}
	if !node.CreatedAt.Equal(node.UpdatedAt) {
		t.Errorf("expected created_at == updated_at, got %s and %s", node.CreatedAt, node.UpdatedAt)
	}
}

func TestCreateNode_ExplicitFalse(t *testing.T) {
	s, _ := newTestService(t)
	cluster := mustCreateCluster(t, s, "alpha")

	node := model.NewNode("n1", cluster.ID)
	node.PassingUnitTests = false
	if err := s.CreateNode(context.Background(), &node); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	stored, err := s.GetNode(context.Background(), node.ID)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stored.PassingUnitTests {
		t.Error("expected passing_unit_tests false to be persisted")
	}
}

func TestGetNode_NotFound(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.GetNode(context.Background(), 999)
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestUpdateNode_Partial(t *testing.T) {
	s, _ := newTestService(t)
	cluster := mustCreateCluster(t, s, "alpha")

	node := model.NewNode("n1", cluster.ID)
	node.Hostname = model.StrPtr("n1.internal")
	node.SSHPort = 2222
	if err := s.CreateNode(context.Background(), &node); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	updated, err := s.UpdateNode(context.Background(), node.ID, map[string]interface{}{"notes": model.StrPtr("x")})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if model.StrVal(updated.Notes) != "x" {
		t.Errorf("expected notes x, got %q", model.StrVal(updated.Notes))
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("expected updated_at after created_at, got %s <= %s", updated.UpdatedAt, updated.CreatedAt)
	}

	// everything else is untouched
	expected := node
	expected.Notes = updated.Notes
	expected.UpdatedAt = updated.UpdatedAt
	if !cmp.Equal(expected, *updated) {
		t.Errorf("diff: %s", cmp.Diff(expected, *updated))
	}
}

func TestUpdateNode_ClearNullable(t *testing.T) {
	s, _ := newTestService(t)
	cluster := mustCreateCluster(t, s, "alpha")

	node := model.NewNode("n1", cluster.ID)
	node.IPAddress = model.StrPtr("10.0.0.1")
	if err := s.CreateNode(context.Background(), &node); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	updated, err := s.UpdateNode(context.Background(), node.ID, map[string]interface{}{"ip_address": (*string)(nil)})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if updated.IPAddress != nil {
		t.Errorf("expected ip_address to be cleared, got %q", *updated.IPAddress)
	}
}

func TestUpdateNode_NotFound(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.UpdateNode(context.Background(), 7, map[string]interface{}{"notes": model.StrPtr("x")})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestUpdateNode_MoveCluster(t *testing.T) {
	s, _ := newTestService(t)
	alpha := mustCreateCluster(t, s, "alpha")
	beta := mustCreateCluster(t, s, "beta")
	node := mustCreateNode(t, s, "n1", alpha.ID)

	_, err := s.UpdateNode(context.Background(), node.ID, map[string]interface{}{"cluster_id": 999})
	if !errors.Is(err, ErrClusterNotFound) {
		t.Fatalf("expected ErrClusterNotFound, got %v", err)
	}

	stored, err := s.GetNode(context.Background(), node.ID)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if stored.ClusterID != alpha.ID {
		t.Errorf("expected node to stay in cluster %d, got %d", alpha.ID, stored.ClusterID)
	}

	moved, err := s.UpdateNode(context.Background(), node.ID, map[string]interface{}{"cluster_id": beta.ID})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if moved.ClusterID != beta.ID {
		t.Errorf("expected node in cluster %d, got %d", beta.ID, moved.ClusterID)
	}
}

func TestDeleteNode(t *testing.T) {
	s, _ := newTestService(t)
	cluster := mustCreateCluster(t, s, "alpha")
	node := mustCreateNode(t, s, "n1", cluster.ID)

	if err := s.DeleteNode(context.Background(), node.ID); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if _, err := s.GetNode(context.Background(), node.ID); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound after delete, got %v", err)
	}

	if err := s.DeleteNode(context.Background(), node.ID); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound on second delete, got %v", err)
	}
}

func TestDeleteCluster_Cascades(t *testing.T) {
	s, _ := newTestService(t)
	alpha := mustCreateCluster(t, s, "alpha")
	beta := mustCreateCluster(t, s, "beta")
	n1 := mustCreateNode(t, s, "n1", alpha.ID)
	n2 := mustCreateNode(t, s, "n2", alpha.ID)
	n3 := mustCreateNode(t, s, "n3", beta.ID)

	if err := s.DeleteCluster(context.Background(), alpha.ID); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	for _, id := range []int{n1.ID, n2.ID} {
		if _, err := s.GetNode(context.Background(), id); !errors.Is(err, ErrNodeNotFound) {
			t.Errorf("expected node %d to be gone, got %v", id, err)
		}
	}

	if _, err := s.GetNode(context.Background(), n3.ID); err != nil {
		t.Errorf("expected node of other cluster to survive, got %v", err)
	}

	if _, err := s.GetCluster(context.Background(), alpha.ID); !errors.Is(err, ErrClusterNotFound) {
		t.Errorf("expected ErrClusterNotFound, got %v", err)
	}

	if err := s.DeleteCluster(context.Background(), alpha.ID); !errors.Is(err, ErrClusterNotFound) {
		t.Errorf("expected ErrClusterNotFound on second delete, got %v", err)
	}
}

func TestListClusters_NoCrossContamination(t *testing.T) {
	s, _ := newTestService(t)
	alpha := mustCreateCluster(t, s, "alpha")
	beta := mustCreateCluster(t, s, "beta")
	na := mustCreateNode(t, s, "node-a", alpha.ID)
	nb := mustCreateNode(t, s, "node-b", beta.ID)

	clusters, err := s.ListClusters(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}

	expected := map[string][]int{
		"alpha": {na.ID},
		"beta":  {nb.ID},
	}
	actual := make(map[string][]int)
	for _, c := range clusters {
		ids := []int{}
		for _, n := range c.Nodes {
			ids = append(ids, n.ID)
		}
		actual[c.Name] = ids
	}

	if !cmp.Equal(expected, actual) {
		t.Errorf("diff: %s", cmp.Diff(expected, actual))
	}
}

func TestListNodes_Filter(t *testing.T) {
	s, _ := newTestService(t)
	alpha := mustCreateCluster(t, s, "alpha")
	beta := mustCreateCluster(t, s, "beta")
	mustCreateNode(t, s, "a1", alpha.ID)
	mustCreateNode(t, s, "a2", alpha.ID)
	mustCreateNode(t, s, "b1", beta.ID)

	all, err := s.ListNodes(context.Background(), NodeFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(all))
	}

	onlyAlpha, err := s.ListNodes(context.Background(), NodeFilter{ClusterID: &alpha.ID})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(onlyAlpha) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(onlyAlpha))
	}
	for _, n := range onlyAlpha {
		if n.ClusterID != alpha.ID {
			t.Errorf("node %d belongs to cluster %d", n.ID, n.ClusterID)
		}
	}
}
