// Package alert owns the alert lifecycle: creation, deactivation and manual
// closing. Two disciplines exist side by side. State alerts hold at most one
// active row per (config, vehicle) pair and are cleared when their condition
// clears; event alerts record every qualifying transition and are never
// deactivated. Detectors pick their discipline through the StateAlerts and
// EventAlerts interfaces rather than by calling ad-hoc methods.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log"

	"fleetwatch/internal/model"
)

var (
	// ErrInvalidStatus is returned for a status outside {0, 1, 2}.
	ErrInvalidStatus = errors.New("alert: invalid status")
	// ErrInvalidTransition is returned when the transition table forbids a change.
	ErrInvalidTransition = errors.New("alert: invalid status transition")
	// ErrNotClosable is returned when an alarm kind cannot be closed manually.
	ErrNotClosable = errors.New("alert: kind cannot be closed manually")
	// ErrShipmentMismatch is returned when the alert is not linked to the
	// shipment named in a manual-close request.
	ErrShipmentMismatch = errors.New("alert: not linked to given shipment")
)

// Store is the persistence surface the lifecycle manager needs.
type Store interface {
	Create(ctx context.Context, alert *model.Alert) error
	Get(ctx context.Context, id uint) (*model.Alert, error)
	Active(ctx context.Context, configID uint, vehicleNo string) (*model.Alert, error)
	SetStatus(ctx context.Context, id uint, status model.AlertStatus) error
}

// ShipmentLookup resolves a vehicle's active shipment for alert linking.
type ShipmentLookup interface {
	ActiveShipment(ctx context.Context, vehicleNo string) (*model.Shipment, error)
}

// Notification is the outbound message handed to the notification port after
// an alert has been durably created.
type Notification struct {
	AlertID   uint
	Kind      model.AlarmKind
	VehicleNo string
	Details   string
	Lat       float64
	Lon       float64
}

// Notifier is the best-effort notification port. Send failures are logged by
// the manager and never propagated: the alert row already persisted.
type Notifier interface {
	Notify(ctx context.Context, n *Notification) error
}

// Cache receives created alerts for quick lookup. Best-effort.
type Cache interface {
	Put(ctx context.Context, alert *model.Alert) error
}

// StateAlerts is the lifecycle discipline for detectors that maintain at most
// one active alert per (config, vehicle) pair.
type StateAlerts interface {
	Raise(ctx context.Context, cfg *model.AlarmConfig, vehicleNo string, lat, lon float64) error
	Clear(ctx context.Context, cfg *model.AlarmConfig, vehicleNo string) error
}

// EventOptions tunes an event-style alert creation.
type EventOptions struct {
	// ShipmentID links the alert to a shipment. When nil the vehicle's
	// active shipment, if any, is linked instead.
	ShipmentID *uint
	// Inactive creates the alert with status 0 instead of 1. Reached-stop
	// alerts are recorded this way.
	Inactive bool
	// Details is free text forwarded to the notification port.
	Details string
}

// EventAlerts is the lifecycle discipline for detectors that record every
// qualifying transition as a fresh alert row.
type EventAlerts interface {
	Trigger(ctx context.Context, cfg *model.AlarmConfig, vehicleNo string, lat, lon float64, opts EventOptions) error
}

// Manager implements both alert lifecycle disciplines on top of the store.
type Manager struct {
	alerts    Store
	shipments ShipmentLookup
	notifier  Notifier
	cache     Cache
}

// NewManager creates a lifecycle manager. notifier and cache may be nil.
func NewManager(alerts Store, shipments ShipmentLookup, notifier Notifier, cache Cache) *Manager {
	return &Manager{
		alerts:    alerts,
		shipments: shipments,
		notifier:  notifier,
		cache:     cache,
	}
}

// Raise creates an active alert for the pair unless one already exists, in
// which case the existing alert is maintained untouched. Repeated raises for
// an unchanged condition therefore never produce a second active row.
func (m *Manager) Raise(ctx context.Context, cfg *model.AlarmConfig, vehicleNo string, lat, lon float64) error {
	existing, err := m.alerts.Active(ctx, cfg.ID, vehicleNo)
	if err != nil {
		return fmt.Errorf("lookup active alert: %w", err)
	}
	if existing != nil {
		return nil
	}

	return m.create(ctx, cfg, vehicleNo, lat, lon, nil, model.AlertActive, "")
}

// Clear deactivates the pair's active alert if one exists; no-op otherwise.
func (m *Manager) Clear(ctx context.Context, cfg *model.AlarmConfig, vehicleNo string) error {
	existing, err := m.alerts.Active(ctx, cfg.ID, vehicleNo)
	if err != nil {
		return fmt.Errorf("lookup active alert: %w", err)
	}
	if existing == nil {
		return nil
	}
	if !CanTransition(existing.Status, model.AlertInactive) {
		return ErrInvalidTransition
	}
	return m.alerts.SetStatus(ctx, existing.ID, model.AlertInactive)
}

// Trigger creates a fresh alert row without any prior-state check.
func (m *Manager) Trigger(ctx context.Context, cfg *model.AlarmConfig, vehicleNo string, lat, lon float64, opts EventOptions) error {
	status := model.AlertActive
	if opts.Inactive {
		status = model.AlertInactive
	}
	return m.create(ctx, cfg, vehicleNo, lat, lon, opts.ShipmentID, status, opts.Details)
}

// ManualClose applies an operator-requested status change, checked against
// the central transition table and the closable-kind allow list.
func (m *Manager) ManualClose(ctx context.Context, alertID uint, status model.AlertStatus, shipmentID *uint) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	existing, err := m.alerts.Get(ctx, alertID)
	if err != nil {
		return fmt.Errorf("load alert %d: %w", alertID, err)
	}

	if shipmentID != nil {
		if existing.ShipmentID == nil || *existing.ShipmentID != *shipmentID {
			return ErrShipmentMismatch
		}
	}

	if !CanTransition(existing.Status, status) {
		return ErrInvalidTransition
	}
	if status == model.AlertManuallyClosed {
		if existing.AlarmConfig == nil || !closableKinds[existing.AlarmConfig.Kind] {
			return ErrNotClosable
		}
	}

	return m.alerts.SetStatus(ctx, alertID, status)
}

func (m *Manager) create(ctx context.Context, cfg *model.AlarmConfig, vehicleNo string, lat, lon float64, shipmentID *uint, status model.AlertStatus, details string) error {
	if shipmentID == nil && m.shipments != nil {
		shipment, err := m.shipments.ActiveShipment(ctx, vehicleNo)
		if err != nil {
			log.Printf("[AlertLifecycle] shipment lookup for %s failed: %v", vehicleNo, err)
		} else if shipment != nil {
			shipmentID = &shipment.ID
		}
	}

	record := &model.Alert{
		AlarmConfigID: cfg.ID,
		VehicleNo:     vehicleNo,
		Status:        status,
		Lat:           lat,
		Lon:           lon,
		ShipmentID:    shipmentID,
	}
	if err := m.alerts.Create(ctx, record); err != nil {
		return fmt.Errorf("create alert: %w", err)
	}

	if m.cache != nil {
		if err := m.cache.Put(ctx, record); err != nil {
			log.Printf("[AlertLifecycle] cache alert %d failed: %v", record.ID, err)
		}
	}

	if m.notifier != nil {
		if details == "" {
			details = fmt.Sprintf("%s alert for vehicle %s", cfg.Kind, vehicleNo)
		}
		notification := &Notification{
			AlertID:   record.ID,
			Kind:      cfg.Kind,
			VehicleNo: vehicleNo,
			Details:   details,
			Lat:       lat,
			Lon:       lon,
		}
		if err := m.notifier.Notify(ctx, notification); err != nil {
			log.Printf("[AlertLifecycle] notify for alert %d failed: %v", record.ID, err)
		}
	}

	return nil
}
