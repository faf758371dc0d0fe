// internal/services/admin_service.go
package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/flypig-ai/flypig-backend/internal/config"
	"github.com/flypig-ai/flypig-backend/internal/utils"
)

type AdminService struct {
	users UserStore
	cfg   *config.Config
}

// AdminUser is the per-user row surfaced to admins.
type AdminUser struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	CreatedAt     string `json:"createdAt"`
	AnalysisCount int    `json:"analysisCount"`
	IsPaid        bool   `json:"isPaid"`
}

func NewAdminService(users UserStore, cfg *config.Config) *AdminService {
	return &AdminService{
		users: users,
		cfg:   cfg,
	}
}

// GetUsers lists accounts, newest first.
func (s *AdminService) GetUsers(params utils.PaginationParams) (*utils.PaginationResult, error) {
	params = params.Normalize()

	users, total, err := s.users.List(params)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	rows := make([]AdminUser, 0, len(users))
	for _, u := range users {
		rows = append(rows, AdminUser{
			UID:           u.ID.String(),
			Email:         u.Email,
			CreatedAt:     u.CreatedAt.UTC().Format(time.RFC3339),
			AnalysisCount: u.AnalysisCount,
			IsPaid:        u.IsPaid,
		})
	}

	result := utils.CreatePaginationResult(rows, total, params)
	return &result, nil
}

// DownloadUsersCsv exports every account as CSV.
func (s *AdminService) DownloadUsersCsv() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"UID", "Email", "Created At", "Analysis Count", "Is Paid"}); err != nil {
		return "", err
	}

	params := utils.PaginationParams{Page: 1, Limit: 500}
	for {
		users, total, err := s.users.List(params)
		if err != nil {
			return "", fmt.Errorf("failed to list users: %w", err)
		}

		for _, u := range users {
			record := []string{
				u.ID.String(),
				u.Email,
				u.CreatedAt.UTC().Format(time.RFC3339),
				strconv.Itoa(u.AnalysisCount),
				strconv.FormatBool(u.IsPaid),
			}
			if err := w.Write(record); err != nil {
				return "", err
			}
		}

		if int64(params.Page*params.Limit) >= total || len(users) == 0 {
			break
		}
		params.Page++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SetAdminByOwner grants the admin flag to the user with the given email.
// Only the configured project owner may call it.
func (s *AdminService) SetAdminByOwner(callerUID, email string) error {
	if s.cfg.Admin.OwnerUID == "" || callerUID != s.cfg.Admin.OwnerUID {
		return ErrPermissionDenied
	}
	if email == "" {
		return errors.New("email is required")
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return err
	}

	user.IsAdmin = true
	return s.users.Save(user)
}
