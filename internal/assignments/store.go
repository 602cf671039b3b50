// Package assignments owns the user_project_roles relation: which role a
// user holds inside a project.
package assignments

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"projecthub/internal/models"
)

// Store holds the row-level operations on user_project_roles. Every method
// takes the gorm handle to run on so callers can compose them inside one
// transaction.
type Store struct{}

// Find returns the assignment for (userID, projectID) with its role loaded,
// or nil when there is none.
func (Store) Find(tx *gorm.DB, userID, projectID uuid.UUID) (*models.Assignment, error) {
	var a models.Assignment
	err := tx.Preload("Role").
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &a, nil
}

// Replace removes any assignment for (userID, projectID) and inserts one for
// roleID. Run it inside a transaction: the pair is never left without a row
// once the transaction commits.
func (Store) Replace(tx *gorm.DB, userID, projectID, roleID uuid.UUID) (*models.Assignment, error) {
	if err := tx.Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.Assignment{}).Error; err != nil {
		return nil, fmt.Errorf("delete previous assignment: %w", err)
	}
	a := &models.Assignment{UserID: userID, ProjectID: projectID, RoleID: roleID}
	if err := tx.Create(a).Error; err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	return a, nil
}

// Insert adds a new assignment. A second row for the same pair fails with
// gorm.ErrDuplicatedKey.
func (Store) Insert(tx *gorm.DB, userID, projectID, roleID uuid.UUID) (*models.Assignment, error) {
	a := &models.Assignment{UserID: userID, ProjectID: projectID, RoleID: roleID}
	if err := tx.Create(a).Error; err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	return a, nil
}

// Delete removes the assignment with id and reports whether a row went away.
func (Store) Delete(tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := tx.Where("id = ?", id).Delete(&models.Assignment{})
	if res.Error != nil {
		return false, fmt.Errorf("delete assignment: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteByProject removes every assignment in a project.
func (Store) DeleteByProject(tx *gorm.DB, projectID uuid.UUID) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&models.Assignment{}).Error; err != nil {
		return fmt.Errorf("delete project assignments: %w", err)
	}
	return nil
}

// StampUser records when the user's role assignments last changed.
func (Store) StampUser(tx *gorm.DB, userID uuid.UUID, at time.Time) error {
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("role_assignment_time", at).Error; err != nil {
		return fmt.Errorf("stamp role assignment time: %w", err)
	}
	return nil
}
