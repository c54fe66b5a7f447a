package services

import (
	"encoding/json"
	"fmt"

	"fieldform/backend/models"
	"fieldform/backend/store"
)

// RegisterUser creates a user locally and queues the registration for the
// remote backend.
func RegisterUser(email, name string) (*models.User, error) {
	user, err := store.CreateUser(email, name)
	if err != nil {
		return nil, err
	}
	if err := enqueueEntity(models.EntityUser, models.ActionCreate, user.ID, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser applies a partial update and queues the new state.
func UpdateUser(id string, update store.UserUpdate) (*models.User, error) {
	if err := store.UpdateUser(id, update); err != nil {
		return nil, err
	}
	user, err := store.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if err := enqueueEntity(models.EntityUser, models.ActionUpdate, id, user); err != nil {
		return nil, err
	}
	return user, nil
}

func enqueueEntity(entityType, action, entityID string, entity any) error {
	payload, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("error encoding %s payload: %w", entityType, err)
	}
	if _, err := store.Enqueue(entityType, action, entityID, payload); err != nil {
		return err
	}
	return nil
}
