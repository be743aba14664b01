package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gigmatch/internal/events"
	"gigmatch/internal/geo"
	"gigmatch/internal/models"
	"gigmatch/internal/storage"
	"gigmatch/internal/transport/dto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type applicationService struct {
	store  storage.Store
	index  indexSync
	events events.Publisher
	cfg    Settings
}

// NewApplicationService creates a new instance of ApplicationService.
func NewApplicationService(store storage.Store, index geo.Index, pub events.Publisher, cfg Settings) ApplicationService {
	return &applicationService{store: store, index: indexSync{index: index}, events: pub, cfg: cfg}
}

// pendingApplication loads the pair's application and requires it to be pending.
func pendingApplication(ctx context.Context, tx storage.Repositories, jobID, providerID uuid.UUID) (*models.Application, error) {
	app, err := tx.Applications().Get(ctx, jobID, providerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: no application by %s for job %s", ErrApplicationNotFound, providerID, jobID)
		}
		return nil, mapRepoError(err, "fetching application")
	}
	if app.Status != models.ApplicationPending {
		return nil, fmt.Errorf("%w: application is already %s", ErrApplicationNotFound, app.Status)
	}
	return app, nil
}

func (s *applicationService) Apply(ctx context.Context, req *dto.ApplyRequest) (app *models.Application, err error) {
	providerID := req.ProviderID
	if providerID == uuid.Nil {
		providerID = req.UserID
	}
	ctx, span, log := startSpan(ctx, "ApplicationService.Apply",
		attribute.String("job.id", req.JobID.String()), attribute.String("provider.id", providerID.String()))
	defer func() { endSpan(span, err) }()

	if req.UserID != uuid.Nil && providerID != req.UserID {
		return nil, fmt.Errorf("%w: cannot apply on behalf of another user", ErrForbidden)
	}

	err = inTx(ctx, s.store, "applying to job", func(ctx context.Context, tx storage.Repositories) error {
		job, err := tx.Jobs().GetForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		provider, err := tx.Users().GetByID(ctx, providerID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching provider %s", providerID))
		}
		if provider.Role() != models.RoleProvider {
			return fmt.Errorf("%w: only providers apply to jobs", ErrInvalidRole)
		}
		if job.Status != models.JobStatusOpen {
			return fmt.Errorf("%w: job %s is %s", ErrJobNotOpen, job.ID, job.Status)
		}
		if _, err := tx.Applications().Get(ctx, job.ID, providerID); err == nil {
			return ErrDuplicateApplication
		} else if !errors.Is(err, storage.ErrNotFound) {
			return mapRepoError(err, "checking existing application")
		}

		app = &models.Application{
			ID:         uuid.New(),
			JobID:      job.ID,
			ProviderID: providerID,
			Status:     models.ApplicationPending,
			Message:    strings.TrimSpace(req.Message),
			CreatedAt:  s.cfg.now(),
		}
		if err := tx.Applications().Create(ctx, app); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return ErrDuplicateApplication
			}
			return mapRepoError(err, "creating application")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.New(events.ApplicationCreated, app.JobID.String(), app))
	log.Info("application created", zap.Stringer("job", app.JobID), zap.Stringer("provider", providerID))
	return app, nil
}

func (s *applicationService) ListForJob(ctx context.Context, req *dto.ListApplicationsRequest) ([]models.ApplicationView, error) {
	var status *models.ApplicationStatus
	if req.Status != "" {
		st := models.ApplicationStatus(req.Status)
		if !st.Valid() {
			return nil, validationError("unknown application status %q", req.Status)
		}
		status = &st
	}

	job, err := s.store.Jobs().GetByID(ctx, req.JobID)
	if err != nil {
		return nil, mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
	}
	views, err := s.store.Applications().ListByJob(ctx, job.ID, status)
	if err != nil {
		return nil, mapRepoError(err, "listing applications")
	}
	if job.HirerID == req.UserID {
		return views, nil
	}

	// applicants only see their own
	if _, err := s.store.Applications().Get(ctx, job.ID, req.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: only the hirer or an applicant may list applications", ErrForbidden)
		}
		return nil, mapRepoError(err, "fetching application")
	}
	own := make([]models.ApplicationView, 0, 1)
	for _, v := range views {
		if v.ProviderID == req.UserID {
			own = append(own, v)
		}
	}
	return own, nil
}

func (s *applicationService) Accept(ctx context.Context, req *dto.DecideApplicationRequest) (job *models.Job, err error) {
	ctx, span, log := startSpan(ctx, "ApplicationService.Accept",
		attribute.String("job.id", req.JobID.String()), attribute.String("provider.id", req.ProviderID.String()))
	defer func() { endSpan(span, err) }()

	var rejected int64
	err = inTx(ctx, s.store, "accepting application", func(ctx context.Context, tx storage.Repositories) error {
		var err error
		job, err = tx.Jobs().GetForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		if job.HirerID != req.UserID {
			return fmt.Errorf("%w: only the job's hirer may accept applications", ErrForbidden)
		}
		if job.Status != models.JobStatusOpen {
			return fmt.Errorf("%w: job %s is %s", ErrJobNotOpen, job.ID, job.Status)
		}
		app, err := pendingApplication(ctx, tx, job.ID, req.ProviderID)
		if err != nil {
			return err
		}

		if err := tx.Applications().UpdateStatus(ctx, app.ID, models.ApplicationAccepted); err != nil {
			return mapRepoError(err, "accepting application")
		}
		rejected, err = tx.Applications().RejectByJob(ctx, job.ID, &app.ID,
			[]models.ApplicationStatus{models.ApplicationPending})
		if err != nil {
			return mapRepoError(err, "rejecting competing applications")
		}
		return assignJob(ctx, tx, job, req.ProviderID, s.cfg.now())
	})
	if err != nil {
		return nil, err
	}

	s.index.job(ctx, job)
	publish(ctx, s.events, jobEvent(events.JobAssigned, job))
	log.Info("application accepted", zap.Stringer("job", job.ID),
		zap.Stringer("provider", req.ProviderID), zap.Int64("rejected", rejected))
	return job, nil
}

func (s *applicationService) Reject(ctx context.Context, req *dto.DecideApplicationRequest) (app *models.Application, err error) {
	ctx, span, _ := startSpan(ctx, "ApplicationService.Reject",
		attribute.String("job.id", req.JobID.String()), attribute.String("provider.id", req.ProviderID.String()))
	defer func() { endSpan(span, err) }()

	err = inTx(ctx, s.store, "rejecting application", func(ctx context.Context, tx storage.Repositories) error {
		job, err := tx.Jobs().GetForUpdate(ctx, req.JobID)
		if err != nil {
			return mapRepoError(err, fmt.Sprintf("fetching job %s", req.JobID))
		}
		if job.HirerID != req.UserID {
			return fmt.Errorf("%w: only the job's hirer may reject applications", ErrForbidden)
		}
		app, err = pendingApplication(ctx, tx, job.ID, req.ProviderID)
		if err != nil {
			return err
		}
		if err := tx.Applications().UpdateStatus(ctx, app.ID, models.ApplicationRejected); err != nil {
			return mapRepoError(err, "rejecting application")
		}
		app.Status = models.ApplicationRejected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}
