package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"stayharbor/channelsync/internal/constants"
	"stayharbor/channelsync/internal/db/repositories"
	"stayharbor/channelsync/internal/models/dtos/requests"
	gormModels "stayharbor/channelsync/internal/models/gorm"
)

// ValidationError reports a rejected connection payload. Handlers map it
// to a 400 instead of a 500.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a duplicate enabled connection for the same
// (property, platform, external property) triple.
type ConflictError struct {
	ExistingID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("an enabled connection already exists for this property and platform (id %s)", e.ExistingID)
}

type ConnectionService struct {
	connRepo *repositories.ConnectionRepository
	logRepo  *repositories.SyncLogRepository
}

func NewConnectionService(connRepo *repositories.ConnectionRepository, logRepo *repositories.SyncLogRepository) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		logRepo:  logRepo,
	}
}

func (s *ConnectionService) GetConnection(ctx context.Context, id string) (*gormModels.ChannelConnection, error) {
	return s.connRepo.GetByID(ctx, id)
}

func (s *ConnectionService) ListConnections(ctx context.Context, propertyID string) ([]gormModels.ChannelConnection, error) {
	return s.connRepo.List(ctx, propertyID)
}

// CreateConnection validates and persists a new channel connection.
func (s *ConnectionService) CreateConnection(ctx context.Context, req *requests.CreateConnectionRequest) (*gormModels.ChannelConnection, error) {
	if strings.TrimSpace(req.PropertyID) == "" {
		return nil, &ValidationError{Field: "property_id", Message: "is required"}
	}
	if !constants.IsValidPlatform(req.Platform) {
		return nil, &ValidationError{Field: "platform", Message: fmt.Sprintf("unknown platform %q", req.Platform)}
	}

	conn := &gormModels.ChannelConnection{
		PropertyID:          req.PropertyID,
		Platform:            req.Platform,
		ConnectionType:      req.ConnectionType,
		IcalURL:             req.IcalURL,
		APIKey:              req.APIKey,
		ExternalPropertyID:  req.ExternalPropertyID,
		AutoSyncEnabled:     true,
		SyncIntervalMinutes: 60,
		Enabled:             true,
	}
	if req.AutoSyncEnabled != nil {
		conn.AutoSyncEnabled = *req.AutoSyncEnabled
	}
	if req.SyncIntervalMinutes != nil {
		conn.SyncIntervalMinutes = *req.SyncIntervalMinutes
	}

	if err := validateConnection(conn); err != nil {
		return nil, err
	}

	dup, err := s.connRepo.FindEnabledDuplicate(ctx, conn.PropertyID, conn.Platform, conn.ExternalPropertyID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate connections: %w", err)
	}
	if dup != nil {
		return nil, &ConflictError{ExistingID: dup.ID}
	}

	if err := s.connRepo.Create(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}
	return conn, nil
}

// UpdateConnection applies the non-nil fields of the request to an
// existing connection. Identity fields (property, platform, type) are
// immutable; operators delete and recreate instead.
func (s *ConnectionService) UpdateConnection(ctx context.Context, id string, req *requests.UpdateConnectionRequest) (*gormModels.ChannelConnection, error) {
	conn, err := s.connRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}
	if conn == nil {
		return nil, nil
	}

	if req.IcalURL != nil {
		conn.IcalURL = req.IcalURL
	}
	if req.APIKey != nil {
		conn.APIKey = req.APIKey
	}
	if req.ExternalPropertyID != nil {
		conn.ExternalPropertyID = req.ExternalPropertyID
	}
	if req.AutoSyncEnabled != nil {
		conn.AutoSyncEnabled = *req.AutoSyncEnabled
	}
	if req.SyncIntervalMinutes != nil {
		conn.SyncIntervalMinutes = *req.SyncIntervalMinutes
	}
	if req.Enabled != nil {
		conn.Enabled = *req.Enabled
	}

	if err := validateConnection(conn); err != nil {
		return nil, err
	}

	// Re-enabling a connection can collide with one created in the
	// meantime for the same triple
	if conn.Enabled {
		dup, err := s.connRepo.FindEnabledDuplicate(ctx, conn.PropertyID, conn.Platform, conn.ExternalPropertyID, conn.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check for duplicate connections: %w", err)
		}
		if dup != nil {
			return nil, &ConflictError{ExistingID: dup.ID}
		}
	}

	if err := s.connRepo.Update(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to update connection: %w", err)
	}
	return conn, nil
}

// DeleteConnection removes a connection and its sync history. Bookings
// already imported through it are kept.
func (s *ConnectionService) DeleteConnection(ctx context.Context, id string) (bool, error) {
	conn, err := s.connRepo.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to load connection: %w", err)
	}
	if conn == nil {
		return false, nil
	}
	if err := s.connRepo.DeleteWithLogs(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete connection: %w", err)
	}
	return true, nil
}

func (s *ConnectionService) ListSyncLogs(ctx context.Context, connectionID string, limit int) ([]gormModels.SyncLog, error) {
	return s.logRepo.List(ctx, connectionID, limit)
}

func validateConnection(conn *gormModels.ChannelConnection) error {
	if conn.SyncIntervalMinutes <= 0 {
		return &ValidationError{Field: "sync_interval_minutes", Message: "must be greater than zero"}
	}

	switch conn.ConnectionType {
	case constants.ConnectionTypeIcal:
		if conn.IcalURL == nil || strings.TrimSpace(*conn.IcalURL) == "" {
			return &ValidationError{Field: "ical_url", Message: "is required for ical connections"}
		}
		parsed, err := url.Parse(*conn.IcalURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return &ValidationError{Field: "ical_url", Message: "must be an http(s) URL"}
		}
	case constants.ConnectionTypeAPI:
		if conn.APIKey == nil || strings.TrimSpace(*conn.APIKey) == "" {
			return &ValidationError{Field: "api_key", Message: "is required for api connections"}
		}
		if conn.Platform != constants.PlatformLodgify {
			return &ValidationError{Field: "platform", Message: "api connections are only supported for lodgify"}
		}
	default:
		return &ValidationError{Field: "connection_type", Message: fmt.Sprintf("unknown connection type %q", conn.ConnectionType)}
	}
	return nil
}
