package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/levelupapp/levelup-server/internal/backup"
)

func (s *Server) registerBackupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createBackup",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/backups",
		Summary:     "Create backup",
		Description: "Writes a consistent snapshot of the XP database (admin)",
		Tags:        []string{"Admin"},
	}, s.handleCreateBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBackups",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/backups",
		Summary:     "List backups",
		Tags:        []string{"Admin"},
	}, s.handleListBackups)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBackup",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/backups/{backupID}",
		Summary:     "Delete backup",
		Tags:        []string{"Admin"},
	}, s.handleDeleteBackup)
}

// CreateBackupInput carries the admin credential.
type CreateBackupInput struct {
	AdminKey string `header:"X-Admin-Key" doc:"Admin API key"`
}

// CreateBackupOutput wraps the backup result for Huma.
type CreateBackupOutput struct {
	Body backup.BackupResult
}

func (s *Server) handleCreateBackup(ctx context.Context, input *CreateBackupInput) (*CreateBackupOutput, error) {
	if err := s.requireAdminKey(input.AdminKey); err != nil {
		return nil, huma.Error401Unauthorized("unauthorized", err)
	}

	result, err := s.services.Backups.Create(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to create backup", err)
	}
	return &CreateBackupOutput{Body: *result}, nil
}

// ListBackupsInput carries the admin credential.
type ListBackupsInput struct {
	AdminKey string `header:"X-Admin-Key" doc:"Admin API key"`
}

// ListBackupsOutput wraps the backup listing for Huma.
type ListBackupsOutput struct {
	Body struct {
		Backups []backup.Info `json:"backups"`
	}
}

func (s *Server) handleListBackups(ctx context.Context, input *ListBackupsInput) (*ListBackupsOutput, error) {
	if err := s.requireAdminKey(input.AdminKey); err != nil {
		return nil, huma.Error401Unauthorized("unauthorized", err)
	}

	backups, err := s.services.Backups.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list backups", err)
	}

	out := &ListBackupsOutput{}
	out.Body.Backups = backups
	if out.Body.Backups == nil {
		out.Body.Backups = []backup.Info{}
	}
	return out, nil
}

// DeleteBackupInput identifies the archive to remove.
type DeleteBackupInput struct {
	BackupID string `path:"backupID" doc:"Backup archive ID"`
	AdminKey string `header:"X-Admin-Key" doc:"Admin API key"`
}

// DeleteBackupOutput is an empty acknowledgment.
type DeleteBackupOutput struct {
	Body struct {
		Deleted string `json:"deleted"`
	}
}

func (s *Server) handleDeleteBackup(ctx context.Context, input *DeleteBackupInput) (*DeleteBackupOutput, error) {
	if err := s.requireAdminKey(input.AdminKey); err != nil {
		return nil, huma.Error401Unauthorized("unauthorized", err)
	}

	if err := s.services.Backups.Delete(ctx, input.BackupID); err != nil {
		if errors.Is(err, backup.ErrBackupNotFound) {
			return nil, huma.Error404NotFound("backup not found", err)
		}
		return nil, huma.Error500InternalServerError("failed to delete backup", err)
	}

	out := &DeleteBackupOutput{}
	out.Body.Deleted = input.BackupID
	return out, nil
}
