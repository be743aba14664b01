package handlers_test

import (
	"context"

	"gigmatch/internal/models"
	"gigmatch/internal/transport/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) job(args mock.Arguments) (*models.Job, error) {
	if j := args.Get(0); j != nil {
		return j.(*models.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJobService) Create(ctx context.Context, req *dto.CreateJobRequest) (*models.Job, error) {
	return m.job(m.Called(ctx, req))
}

func (m *MockJobService) Get(ctx context.Context, req *dto.GetJobRequest) (*models.Job, error) {
	return m.job(m.Called(ctx, req))
}

func (m *MockJobService) List(ctx context.Context, req *dto.ListJobsRequest) (*dto.JobListResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*dto.JobListResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJobService) Assign(ctx context.Context, jobID, providerID uuid.UUID) (*models.Job, error) {
	return m.job(m.Called(ctx, jobID, providerID))
}

func (m *MockJobService) Start(ctx context.Context, req *dto.JobActionRequest) (*models.Job, error) {
	return m.job(m.Called(ctx, req))
}

func (m *MockJobService) Complete(ctx context.Context, req *dto.CompleteJobRequest) (*models.Job, error) {
	return m.job(m.Called(ctx, req))
}

func (m *MockJobService) Cancel(ctx context.Context, req *dto.JobActionRequest) (*models.Job, error) {
	return m.job(m.Called(ctx, req))
}

type MockApplicationService struct {
	mock.Mock
}

func (m *MockApplicationService) Apply(ctx context.Context, req *dto.ApplyRequest) (*models.Application, error) {
	args := m.Called(ctx, req)
	if a := args.Get(0); a != nil {
		return a.(*models.Application), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplicationService) ListForJob(ctx context.Context, req *dto.ListApplicationsRequest) ([]models.ApplicationView, error) {
	args := m.Called(ctx, req)
	if a := args.Get(0); a != nil {
		return a.([]models.ApplicationView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplicationService) Accept(ctx context.Context, req *dto.DecideApplicationRequest) (*models.Job, error) {
	args := m.Called(ctx, req)
	if j := args.Get(0); j != nil {
		return j.(*models.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApplicationService) Reject(ctx context.Context, req *dto.DecideApplicationRequest) (*models.Application, error) {
	args := m.Called(ctx, req)
	if a := args.Get(0); a != nil {
		return a.(*models.Application), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) RecordCompletion(ctx context.Context, jobID uuid.UUID) (*models.LedgerEntry, error) {
	args := m.Called(ctx, jobID)
	if e := args.Get(0); e != nil {
		return e.(*models.LedgerEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedgerService) Withdraw(ctx context.Context, req *dto.WithdrawRequest) (*dto.WithdrawalResponse, error) {
	args := m.Called(ctx, req)
	if w := args.Get(0); w != nil {
		return w.(*dto.WithdrawalResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedgerService) Summarize(ctx context.Context, providerID uuid.UUID) (*models.EarningsSummary, error) {
	args := m.Called(ctx, providerID)
	if s := args.Get(0); s != nil {
		return s.(*models.EarningsSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedgerService) ListEntries(ctx context.Context, providerID uuid.UUID) ([]models.LedgerEntry, error) {
	args := m.Called(ctx, providerID)
	if e := args.Get(0); e != nil {
		return e.([]models.LedgerEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedgerService) ListWithdrawals(ctx context.Context, providerID uuid.UUID) ([]models.Withdrawal, error) {
	args := m.Called(ctx, providerID)
	if w := args.Get(0); w != nil {
		return w.([]models.Withdrawal), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) user(args mock.Arguments) (*models.User, error) {
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	return m.user(m.Called(ctx, req))
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserService) List(ctx context.Context, req *dto.ListUsersRequest) ([]models.UserListing, error) {
	args := m.Called(ctx, req)
	if l := args.Get(0); l != nil {
		return l.([]models.UserListing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, req *dto.UpdateUserRequest) (*models.User, error) {
	return m.user(m.Called(ctx, req))
}

func (m *MockUserService) Delete(ctx context.Context, req *dto.DeleteUserRequest) error {
	return m.Called(ctx, req).Error(0)
}
