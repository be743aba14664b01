package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gigmatch/internal/events"
	"gigmatch/internal/geo"
	"gigmatch/internal/models"
	"gigmatch/internal/storage"
	"gigmatch/internal/transport/dto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type jobService struct {
	store  storage.Store
	index  indexSync
	events events.Publisher
	cfg    Settings
}

// NewJobService creates a new instance of JobService.
func NewJobService(store storage.Store, index geo.Index, pub events.Publisher, cfg Settings) JobService {
	return &jobService{store: store, index: indexSync{index: index}, events: pub, cfg: cfg}
}

type jobEventPayload struct {
	JobID      uuid.UUID        `json:"jobId"`
	HirerID    uuid.UUID        `json:"hirerId"`
	ProviderID *uuid.UUID       `json:"providerId,omitempty"`
	Status     models.JobStatus `json:"status"`
	Budget     int64            `json:"budget"`
}

func jobEvent(typ string, j *models.Job) events.Event {
	return events.New(typ, j.ID.String(), jobEventPayload{
		JobID:      j.ID,
		HirerID:    j.HirerID,
		ProviderID: j.AssignedProviderID,
		Status:     j.Status,
		Budget:     j.Budget,
	})
}

// assignJob performs open → assigned inside tx.
func assignJob(ctx context.Context, tx storage.Repositories, job *models.Job, providerID uuid.UUID, now time.Time) error {
	if job.Status != models.JobStatusOpen {
		return fmt.Errorf("%w: cannot assign job in status %s", ErrInvalidTransition, job.Status)
	}
	job.Status = models.JobStatusAssigned
	job.AssignedProviderID = &providerID
	job.AssignedAt = &now
	if err := tx.Jobs().UpdateLifecycle(ctx, job); err != nil {
		return mapRepoError(err, fmt.Sprintf("assigning job %s", job.ID))
	}
	return nil
}

func (s *jobService) Create(ctx context.Context, req *dto.CreateJobRequest) (job *models.Job, err error) {
	ctx, span, log := startSpan(ctx, "JobService.Create")
	defer func() { endSpan(span, err) }()

	hirerID := req.HirerID
	if hirerID == uuid.Nil {
		hirerID = req.UserID
	}
	if req.UserID != uuid.Nil && hirerID != req.UserID {
		return nil, fmt.Errorf("%w: cannot post jobs for another user", ErrForbidden)
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	category := strings.TrimSpace(req.Category)
	location := strings.TrimSpace(req.Location)
	switch {
	case title == "":
		return nil, validationError("title is required")
	case description == "":
		return nil, validationError("description is required")
	case category == "":
		return nil, validationError("category is required")
	case location == "":
		return nil, validationError("location is required")
	case req.Budget <= 0:
		return nil, validationError("budget must be positive")
	}
	budgetType := models.BudgetType(req.BudgetType)
	if !budgetType.Valid() {
		return nil, validationError("budgetType must be fixed or hourly")
	}
	if req.Coordinates != nil {
		if err := req.Coordinates.Validate(); err != nil {
			return nil, validationError("coordinates: %v", err)
		}
	}

	hirer, err := s.store.Users().GetByID(ctx, hirerID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching hirer %s", hirerID))
	}
	if hirer.Role() != models.RoleHirer {
		return nil, fmt.Errorf("%w: only hirers post jobs", ErrInvalidRole)
	}

	pin, err := generatePin()
	if err != nil {
		return nil, err
	}
	now := s.cfg.now()
	job = &models.Job{
		ID:            uuid.New(),
		HirerID:       hirerID,
		Title:         title,
		Description:   description,
		Category:      category,
		Budget:        req.Budget,
		BudgetType:    budgetType,
		Location:      location,
		Coordinates:   req.Coordinates,
		IsUrgent:      req.IsUrgent,
		Status:        models.JobStatusOpen,
		CompletionPin: pin,
		CreatedAt:     now,
	}
	if err := s.store.Jobs().Create(ctx, job); err != nil {
		return nil, mapRepoError(err, "creating job")
	}

	s.index.job(ctx, job)
	publish(ctx, s.events, jobEvent(events.JobCreated, job))
	log.Info("job created", zap.Stringer("job", job.ID), zap.Stringer("hirer", hirerID))
	return job, nil
}

func (s *jobService) Get(ctx context.Context, req *dto.GetJobRequest) (*models.Job, error) {
	job, err := s.store.Jobs().GetByID(ctx, req.ID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching job %s", req.ID))
	}
	return job, nil
}

func (s *jobService) List(ctx context.Context, req *dto.ListJobsRequest) (resp *dto.JobListResponse, err error) {
	ctx, span, _ := startSpan(ctx, "JobService.List")
	defer func() { endSpan(span, err) }()

	limit, offset := clampPage(req.Limit, req.Offset)
	filter := storage.JobFilter{
		Category: strings.TrimSpace(req.Category),
		IsUrgent: req.IsUrgent,
		Limit:    limit,
		Offset:   offset,
	}

	status := models.JobStatusOpen
	if req.Status != "" {
		status = models.JobStatus(req.Status)
		if !status.Valid() {
			return nil, validationError("unknown status %q", req.Status)
		}
	}
	filter.Status = &status

	if req.HirerID != "" {
		id, err := uuid.Parse(req.HirerID)
		if err != nil {
			return nil, validationError("hirerId: %v", err)
		}
		filter.HirerID = &id
	}
	if req.ProviderID != "" {
		id, err := uuid.Parse(req.ProviderID)
		if err != nil {
			return nil, validationError("providerId: %v", err)
		}
		filter.ProviderID = &id
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, validationError("latitude and longitude must be given together")
	}
	if req.Latitude != nil {
		center := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}
		q := geo.Query{Center: center, RadiusKm: s.cfg.DefaultRadiusKm}
		if req.Radius != nil {
			q.RadiusKm = *req.Radius
		}
		if err := q.Validate(); err != nil {
			return nil, validationError("%v", err)
		}
		filter.Near, filter.RadiusKm = &center, q.RadiusKm
	}

	listings, err := s.store.Jobs().List(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err, "listing jobs")
	}

	var ids []uuid.UUID
	for _, l := range listings {
		ids = append(ids, l.HirerID)
		if l.AssignedProviderID != nil {
			ids = append(ids, *l.AssignedProviderID)
		}
	}
	users, err := s.store.Users().GetMany(ctx, ids)
	if err != nil {
		return nil, mapRepoError(err, "fetching job parties")
	}

	resp = &dto.JobListResponse{
		Jobs:    make([]dto.JobListItem, 0, len(listings)),
		Limit:   limit,
		Offset:  offset,
		HasMore: len(listings) == limit,
	}
	for _, l := range listings {
		item := dto.JobListItem{JobListing: l}
		if u, ok := users[l.HirerID]; ok {
			sum := u.Summarize()
			item.Hirer = &sum
		}
		if l.AssignedProviderID != nil {
			if u, ok := users[*l.AssignedProviderID]; ok {
				sum := u.Summarize()
				item.Provider = &sum
			}
		}
		resp.Jobs = append(resp.Jobs, item)
	}
	return resp, nil
}

func (s *jobService) Assign(ctx context.Context, jobID, providerID uuid.UUID) (job *models.Job, err error) {
	ctx, span, log := startSpan(ctx, "JobService.Assign",
		attribute.String("job.id", jobID.String()), attribute.String("provider.id", providerID.String()))
	defer func() { endSpan(span, err) }()

	err = inTx(ctx, s.store, "assigning job", func(ctx context.Context, tx storage.Repositories) error {
		var err error
		job, err = tx.Jobs().GetForUpdate(ctx, jobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s for assignment", jobID))
		}
		provider, err := tx.Users().GetByID(ctx, providerID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching provider %s", providerID))
		}
		if provider.Role() != models.RoleProvider {
			return fmt.Errorf("%w: jobs can only be assigned to providers", ErrInvalidRole)
		}
		return assignJob(ctx, tx, job, providerID, s.cfg.now())
	})
	if err != nil {
		return nil, err
	}

	s.index.job(ctx, job)
	publish(ctx, s.events, jobEvent(events.JobAssigned, job))
	log.Info("job assigned", zap.Stringer("job", jobID), zap.Stringer("provider", providerID))
	return job, nil
}

func (s *jobService) Start(ctx context.Context, req *dto.JobActionRequest) (job *models.Job, err error) {
	ctx, span, log := startSpan(ctx, "JobService.Start", attribute.String("job.id", req.JobID.String()))
	defer func() { endSpan(span, err) }()

	err = inTx(ctx, s.store, "starting job", func(ctx context.Context, tx storage.Repositories) error {
		var err error
		job, err = tx.Jobs().GetForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		if job.Status != models.JobStatusAssigned {
			return fmt.Errorf("%w: cannot start job in status %s", ErrInvalidTransition, job.Status)
		}
		if !job.IsAssignedTo(req.UserID) {
			return fmt.Errorf("%w: only the assigned provider can start the job", ErrForbidden)
		}
		now := s.cfg.now()
		job.Status = models.JobStatusInProgress
		job.StartedAt = &now
		if err := tx.Jobs().UpdateLifecycle(ctx, job); err != nil {
			return mapRepoError(err, fmt.Sprintf("starting job %s", job.ID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, jobEvent(events.JobStarted, job))
	log.Info("job started", zap.Stringer("job", job.ID))
	return job, nil
}

func (s *jobService) Complete(ctx context.Context, req *dto.CompleteJobRequest) (job *models.Job, err error) {
	ctx, span, log := startSpan(ctx, "JobService.Complete", attribute.String("job.id", req.JobID.String()))
	defer func() { endSpan(span, err) }()

	var entry *models.LedgerEntry
	err = inTx(ctx, s.store, "completing job", func(ctx context.Context, tx storage.Repositories) error {
		var err error
		job, err = tx.Jobs().GetForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		if job.Status != models.JobStatusInProgress {
			return fmt.Errorf("%w: cannot complete job in status %s", ErrInvalidTransition, job.Status)
		}
		if !job.IsAssignedTo(req.UserID) {
			return fmt.Errorf("%w: only the assigned provider can complete the job", ErrForbidden)
		}
		if !pinMatches(job.CompletionPin, req.Pin) {
			return ErrInvalidPin
		}

		now := s.cfg.now()
		job.Status = models.JobStatusCompleted
		job.CompletedAt = &now
		if err := tx.Jobs().UpdateLifecycle(ctx, job); err != nil {
			return mapRepoError(err, fmt.Sprintf("completing job %s", job.ID))
		}
		for _, party := range []uuid.UUID{job.HirerID, *job.AssignedProviderID} {
			if err := tx.Users().AddCounters(ctx, party, storage.CounterDelta{Jobs: 1}); err != nil {
				return mapRepoError(err, fmt.Sprintf("counting completed job for %s", party))
			}
		}
		entry, err = recordCompletion(ctx, tx, job, s.cfg.FeeRate, now)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrInvalidPin) {
			log.Warn("completion rejected: wrong pin", zap.Stringer("job", req.JobID))
		}
		return nil, err
	}

	publish(ctx, s.events, jobEvent(events.JobCompleted, job), ledgerEvent(entry))
	log.Info("job completed", zap.Stringer("job", job.ID), zap.Int64("net", entry.Net))
	return job, nil
}

func (s *jobService) Cancel(ctx context.Context, req *dto.JobActionRequest) (job *models.Job, err error) {
	ctx, span, log := startSpan(ctx, "JobService.Cancel", attribute.String("job.id", req.JobID.String()))
	defer func() { endSpan(span, err) }()

	err = inTx(ctx, s.store, "cancelling job", func(ctx context.Context, tx storage.Repositories) error {
		var err error
		job, err = tx.Jobs().GetForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		switch job.Status {
		case models.JobStatusOpen:
			if job.HirerID != req.UserID {
				return fmt.Errorf("%w: only the hirer can cancel an open job", ErrForbidden)
			}
		case models.JobStatusAssigned:
			if !job.IsParty(req.UserID) {
				return fmt.Errorf("%w: only the hirer or assigned provider can cancel", ErrForbidden)
			}
		default:
			return fmt.Errorf("%w: cannot cancel job in status %s", ErrInvalidTransition, job.Status)
		}

		now := s.cfg.now()
		job.Status = models.JobStatusCancelled
		job.AssignedProviderID = nil
		job.CancelledAt = &now
		if err := tx.Jobs().UpdateLifecycle(ctx, job); err != nil {
			return mapRepoError(err, fmt.Sprintf("cancelling job %s", job.ID))
		}
		_, err = tx.Applications().RejectByJob(ctx, job.ID, nil,
			[]models.ApplicationStatus{models.ApplicationPending, models.ApplicationAccepted})
		if err != nil {
			return mapRepoError(err, "rejecting applications of cancelled job")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.index.job(ctx, job)
	publish(ctx, s.events, jobEvent(events.JobCancelled, job))
	log.Info("job cancelled", zap.Stringer("job", job.ID), zap.Stringer("by", req.UserID))
	return job, nil
}
