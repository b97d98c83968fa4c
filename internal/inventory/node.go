package inventory

import (
	"context"
	"errors"
	"fmt"

	"watchtower/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NodeFilter narrows ListNodes
type NodeFilter struct {
	ClusterID *int
}

// ListNodes returns nodes ordered by id, optionally for one cluster
func (s *Service) ListNodes(ctx context.Context, filter NodeFilter) ([]model.Node, error) {
	var nodes []model.Node
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		query := tx.Model(&model.Node{})
		if filter.ClusterID != nil {
			query = query.Where("cluster_id = ?", *filter.ClusterID)
		}
		return query.Order("id ASC").Find(&nodes).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return nodes, nil
}

// GetNode returns one node
func (s *Service) GetNode(ctx context.Context, id int) (*model.Node, error) {
	var node model.Node
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		return findNode(tx, id, &node)
	})
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// CreateNode persists a node after checking its cluster exists
func (s *Service) CreateNode(ctx context.Context, node *model.Node) error {
	node.ID = 0
	node.Stamp(s.timestamp())

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if err := clusterExists(tx, node.ClusterID); err != nil {
			return err
		}

		if err := tx.Create(node).Error; err != nil {
			return fmt.Errorf("failed to create node: %w", err)
		}

		return findNode(tx, node.ID, node)
	})
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"node_id": node.ID, "cluster_id": node.ClusterID}).Info("node created")
	return nil
}

// UpdateNode applies the given column assignments to a node and refreshes
// updated_at. Columns not in changes are left untouched. A cluster_id
// change must point at an existing cluster.
func (s *Service) UpdateNode(ctx context.Context, id int, changes map[string]interface{}) (*model.Node, error) {
	var node model.Node
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if err := findNode(tx, id, &node); err != nil {
			return err
		}

		if v, ok := changes["cluster_id"]; ok {
			clusterID, ok := v.(int)
			if !ok {
				return fmt.Errorf("cluster_id must be an int, got %T", v)
			}
			if err := clusterExists(tx, clusterID); err != nil {
				return err
			}
		}

		assignments := make(map[string]interface{}, len(changes)+1)
		for column, value := range changes {
			assignments[column] = value
		}
		assignments["updated_at"] = s.timestamp()

		if err := tx.Model(&node).Updates(assignments).Error; err != nil {
			return fmt.Errorf("failed to update node %d: %w", id, err)
		}

		return findNode(tx, id, &node)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"node_id": id, "fields": len(changes)}).Info("node updated")
	return &node, nil
}

// DeleteNode removes a node
func (s *Service) DeleteNode(ctx context.Context, id int) error {
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		var node model.Node
		if err := findNode(tx, id, &node); err != nil {
			return err
		}

		if err := tx.Delete(&node).Error; err != nil {
			return fmt.Errorf("failed to delete node %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.WithField("node_id", id).Info("node deleted")
	return nil
}

func findNode(tx *gorm.DB, id int, node *model.Node) error {
	if err := tx.First(node, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNodeNotFound
		}
		return fmt.Errorf("failed to get node %d: %w", id, err)
	}
	return nil
}

func clusterExists(tx *gorm.DB, id int) error {
	var count int64
	if err := tx.Model(&model.Cluster{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check cluster %d: %w", id, err)
	}
	if count == 0 {
		return ErrClusterNotFound
	}
	return nil
}
