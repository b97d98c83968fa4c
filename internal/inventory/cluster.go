package inventory

import (
	"context"
	"errors"
	"fmt"

	"watchtower/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ListClusters returns every cluster with its nodes, ordered by id
func (s *Service) ListClusters(ctx context.Context) ([]model.Cluster, error) {
	var clusters []model.Cluster
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		return tx.Preload("Nodes", orderedNodes).Order("id ASC").Find(&clusters).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	return clusters, nil
}

// GetCluster returns one cluster with its nodes
func (s *Service) GetCluster(ctx context.Context, id int) (*model.Cluster, error) {
	var cluster model.Cluster
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		return tx.Preload("Nodes", orderedNodes).First(&cluster, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClusterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster %d: %w", id, err)
	}
	return &cluster, nil
}

// CreateCluster persists a new cluster. Names are unique; a clash is
// reported as ErrClusterNameExists whether it is caught by the pre-check
// or by the unique index.
func (s *Service) CreateCluster(ctx context.Context, cluster *model.Cluster) error {
	cluster.ID = 0
	cluster.Nodes = nil
	cluster.Stamp(s.timestamp())

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Cluster{}).Where("name = ?", cluster.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check name uniqueness: %w", err)
		}
		if count > 0 {
			return ErrClusterNameExists
		}

		if err := tx.Create(cluster).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrClusterNameExists
			}
			return fmt.Errorf("failed to create cluster: %w", err)
		}

		return tx.Preload("Nodes").First(cluster, cluster.ID).Error
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"cluster_id": cluster.ID, "name": cluster.Name}).Info("cluster created")
	return nil
}

// DeleteCluster removes a cluster and every node it owns
func (s *Service) DeleteCluster(ctx context.Context, id int) error {
	var removedNodes int64
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var cluster model.Cluster
		if err := tx.First(&cluster, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClusterNotFound
			}
			return fmt.Errorf("failed to get cluster %d: %w", id, err)
		}

		// the foreign key cascades too; deleting here keeps the rule on
		// stores where foreign keys are not enforced
		res := tx.Where("cluster_id = ?", id).Delete(&model.Node{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete nodes of cluster %d: %w", id, res.Error)
		}
		removedNodes = res.RowsAffected

		if err := tx.Delete(&cluster).Error; err != nil {
			return fmt.Errorf("failed to delete cluster %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"cluster_id": id, "nodes": removedNodes}).Info("cluster deleted")
	return nil
}
