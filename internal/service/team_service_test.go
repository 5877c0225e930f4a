package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/team-expenses/internal/repository"
)

func TestTeamService_CreateTeam(t *testing.T) {
	tests := []struct {
		name          string
		teamName      string
		passcode      string
		creatorID     int64
		setupMocks    func(*MockTeamRepository, *MockMemberRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:      "success: creator becomes the first member",
			teamName:  "Trip",
			passcode:  "1234",
			creatorID: 1,
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
					args.Get(1).(*repository.Team).ID = 7
				}).Return(nil)
				mr.On("Add", mock.Anything, int64(7), int64(1)).Return(nil)
			},
		},
		{
			name:      "team insert failure",
			teamName:  "Trip",
			passcode:  "1234",
			creatorID: 1,
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Create", mock.Anything, mock.Anything).Return(errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
		{
			name:      "membership insert failure rolls the team back",
			teamName:  "Trip",
			passcode:  "1234",
			creatorID: 1,
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
					args.Get(1).(*repository.Team).ID = 7
				}).Return(nil)
				mr.On("Add", mock.Anything, int64(7), int64(1)).Return(errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teamRepo := &MockTeamRepository{}
			memberRepo := &MockMemberRepository{}
			tt.setupMocks(teamRepo, memberRepo)

			svc := NewTeamService(&MockTransactor{}).WithTeamRepo(teamRepo).WithMemberRepo(memberRepo)

			team, err := svc.CreateTeam(context.Background(), tt.teamName, tt.passcode, tt.creatorID)

			if tt.expectedError {
				require.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, team)
			} else {
				require.Nil(t, err)
				require.NotNil(t, team)
				assert.Equal(t, int64(7), team.ID)
				assert.Equal(t, tt.teamName, team.Name)
				assert.Equal(t, tt.passcode, team.Passcode)
			}

			teamRepo.AssertExpectations(t)
			memberRepo.AssertExpectations(t)
		})
	}
}

func TestTeamService_JoinTeam(t *testing.T) {
	tests := []struct {
		name          string
		teamID        int64
		passcode      string
		userID        int64
		setupMocks    func(*MockTeamRepository, *MockMemberRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:     "success",
			teamID:   7,
			passcode: "1234",
			userID:   2,
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("GetByIDAndPasscode", mock.Anything, int64(7), "1234").
					Return(&repository.Team{ID: 7, Name: "Trip", Passcode: "1234"}, nil)
				mr.On("Add", mock.Anything, int64(7), int64(2)).Return(nil)
			},
		},
		{
			name:     "wrong passcode looks like a missing team",
			teamID:   7,
			passcode: "wrong",
			userID:   2,
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("GetByIDAndPasscode", mock.Anything, int64(7), "wrong").
					Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:     "unknown team",
			teamID:   99,
			passcode: "1234",
			userID:   2,
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("GetByIDAndPasscode", mock.Anything, int64(99), "1234").
					Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:     "duplicate membership",
			teamID:   7,
			passcode: "1234",
			userID:   2,
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("GetByIDAndPasscode", mock.Anything, int64(7), "1234").
					Return(&repository.Team{ID: 7, Name: "Trip", Passcode: "1234"}, nil)
				mr.On("Add", mock.Anything, int64(7), int64(2)).Return(repository.ErrAlreadyExists)
			},
			expectedError: true,
			errorCode:     ErrorCodeAlreadyMember,
		},
		{
			name:     "lookup failure",
			teamID:   7,
			passcode: "1234",
			userID:   2,
			setupMocks: func(tr *MockTeamRepository, mr *MockMemberRepository) {
				tr.On("GetByIDAndPasscode", mock.Anything, int64(7), "1234").
					Return(nil, errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teamRepo := &MockTeamRepository{}
			memberRepo := &MockMemberRepository{}
			tt.setupMocks(teamRepo, memberRepo)

			svc := NewTeamService(&MockTransactor{}).WithTeamRepo(teamRepo).WithMemberRepo(memberRepo)

			err := svc.JoinTeam(context.Background(), tt.teamID, tt.passcode, tt.userID)

			if tt.expectedError {
				require.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
			} else {
				require.Nil(t, err)
			}

			teamRepo.AssertExpectations(t)
			memberRepo.AssertExpectations(t)
		})
	}
}

func TestTeamService_SearchTeams(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		setupMocks    func(*MockTeamRepository)
		expectedError bool
		expectedNames []string
	}{
		{
			name:  "substring match",
			query: "tri",
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Search", mock.Anything, "tri").Return([]*repository.TeamSummary{
					{ID: 7, Name: "Trip"},
				}, nil)
			},
			expectedNames: []string{"Trip"},
		},
		{
			name:  "empty query returns everything",
			query: "",
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Search", mock.Anything, "").Return([]*repository.TeamSummary{
					{ID: 7, Name: "Trip"},
					{ID: 8, Name: "Office"},
				}, nil)
			},
			expectedNames: []string{"Trip", "Office"},
		},
		{
			name:  "storage failure",
			query: "tri",
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Search", mock.Anything, "tri").Return(nil, errors.New("db error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teamRepo := &MockTeamRepository{}
			tt.setupMocks(teamRepo)

			svc := NewTeamService(&MockTransactor{}).WithTeamRepo(teamRepo).WithMemberRepo(&MockMemberRepository{})

			teams, err := svc.SearchTeams(context.Background(), tt.query)

			if tt.expectedError {
				require.NotNil(t, err)
				assert.Equal(t, ErrorCodeUnspecified, err.Code)
			} else {
				require.Nil(t, err)
				names := make([]string, 0, len(teams))
				for _, team := range teams {
					names = append(names, team.Name)
				}
				assert.Equal(t, tt.expectedNames, names)
			}

			teamRepo.AssertExpectations(t)
		})
	}
}
