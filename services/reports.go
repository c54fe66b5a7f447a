package services

import (
	"fieldform/backend/models"
	"fieldform/backend/store"
)

// CreateReport creates a report definition locally and queues it for the
// remote backend.
func CreateReport(report *models.ReportDefinition) (*models.ReportDefinition, error) {
	created, err := store.CreateReport(report)
	if err != nil {
		return nil, err
	}
	if err := enqueueEntity(models.EntityReport, models.ActionCreate, created.ID, created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateReport applies a partial update and queues the new state. Changing
// the field list snapshots the previous definition in the store.
func UpdateReport(id string, update store.ReportUpdate) (*models.ReportDefinition, error) {
	if err := store.UpdateReport(id, update); err != nil {
		return nil, err
	}
	report, err := store.GetReportByID(id)
	if err != nil {
		return nil, err
	}
	if err := enqueueEntity(models.EntityReport, models.ActionUpdate, id, report); err != nil {
		return nil, err
	}
	return report, nil
}

// DeleteReport removes a report and its submissions locally and queues the
// deletion.
func DeleteReport(id string) error {
	if err := store.DeleteReport(id); err != nil {
		return err
	}
	if _, err := store.Enqueue(models.EntityReport, models.ActionDelete, id, nil); err != nil {
		return err
	}
	return nil
}
