package usecase

import (
	"context"
	"testing"
	"time"

	"ski-portal/internal/data/entity"
	"ski-portal/internal/data/repository/mock"
	"ski-portal/internal/dto/request"
	"ski-portal/internal/gravatar"
	"ski-portal/pkg/utils"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type UserServiceTestSuite struct {
	suite.Suite
	store   *mock.Store
	service UserService
	ctx     context.Context
	admin   *entity.User
	member  *entity.User
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.store = mock.New()
	avatars := gravatar.New(utils.GravatarConfig{Enabled: true, DefaultImage: "identicon", Size: 64})
	suite.service = NewUserService(suite.store.Repository(), avatars, zap.NewNop())
	suite.ctx = context.Background()
	suite.admin = suite.store.AddUser("patrol", "patrol@example.com", "x", true)
	suite.member = suite.store.AddUser("skier", "skier@example.com", "x", false)
}

func (suite *UserServiceTestSuite) TestGetProfileIncludesReviewCount() {
	resort := suite.store.AddResort("Alta", "Utah", 40.58, -111.63)
	other := suite.store.AddResort("Snowbird", "Utah", 40.58, -111.65)
	suite.store.AddReview(suite.member.ID, resort.ID, ptr(5), nil, time.Now())
	suite.store.AddReview(suite.member.ID, other.ID, nil, ptr("Long lift lines"), time.Now())

	profile, err := suite.service.GetProfile(suite.ctx, suite.member.ID.String())
	suite.Require().NoError(err)
	suite.Equal("skier", profile.Username)
	suite.Equal(int64(2), profile.ReviewCount)
	suite.Contains(profile.AvatarURL, "gravatar.com/avatar/")

	_, err = suite.service.GetProfile(suite.ctx, "nope")
	suite.ErrorContains(err, "invalid")
}

func (suite *UserServiceTestSuite) TestGetAllUsersAdminsFirst() {
	page, err := suite.service.GetAllUsers(suite.ctx, &request.PaginatedRequest{Page: 1, PerPage: 1})
	suite.Require().NoError(err)
	suite.Equal(int64(2), page.Pagination.Total)
	suite.Equal(2, page.Pagination.TotalPages)
	suite.Require().Len(page.Data, 1)
	suite.Equal("patrol", page.Data[0].Username)
	suite.True(page.Data[0].IsAdmin)
}

func (suite *UserServiceTestSuite) TestSetAdmin() {
	resp, err := suite.service.SetAdmin(suite.ctx, suite.admin.ID.String(), suite.member.ID.String(), true)
	suite.Require().NoError(err)
	suite.True(resp.IsAdmin)
	suite.True(suite.store.User(suite.member.ID).IsAdmin)

	resp, err = suite.service.SetAdmin(suite.ctx, suite.admin.ID.String(), suite.member.ID.String(), false)
	suite.Require().NoError(err)
	suite.False(resp.IsAdmin)
}

func (suite *UserServiceTestSuite) TestSetAdminRejectsSelfDemotion() {
	_, err := suite.service.SetAdmin(suite.ctx, suite.admin.ID.String(), suite.admin.ID.String(), false)
	suite.ErrorContains(err, "forbidden")
	suite.True(suite.store.User(suite.admin.ID).IsAdmin)
}

func (suite *UserServiceTestSuite) TestSetAdminUnknownUser() {
	_, err := suite.service.SetAdmin(suite.ctx, suite.admin.ID.String(), "6f1c1c1e-8d0e-4a8e-9a43-9f0f0f0f0f0f", true)
	suite.ErrorContains(err, "not found")
}

func (suite *UserServiceTestSuite) TestDeleteUserRevokesSessions() {
	session := suite.store.AddSession(suite.member.ID, time.Hour)

	suite.Require().NoError(suite.service.DeleteUser(suite.ctx, suite.admin.ID.String(), suite.member.ID.String()))

	suite.NotNil(suite.store.User(suite.member.ID).DeletedAt)
	found, err := suite.store.Repository().Session.FindValidSession(suite.ctx, session.Token)
	suite.NoError(err)
	suite.Nil(found)

	suite.ErrorContains(suite.service.DeleteUser(suite.ctx, suite.admin.ID.String(), suite.member.ID.String()), "not found")
}

func (suite *UserServiceTestSuite) TestDeleteUserDropsTheirReviewsFromAggregates() {
	resort := suite.store.AddResort("Alta", "Utah", 40.58, -111.63)
	suite.store.AddReview(suite.admin.ID, resort.ID, ptr(2), nil, time.Now())
	suite.store.AddReview(suite.member.ID, resort.ID, ptr(5), ptr("Deep days"), time.Now())

	suite.Require().NoError(suite.service.DeleteUser(suite.ctx, suite.admin.ID.String(), suite.member.ID.String()))

	stored := suite.store.Resort(resort.ID)
	suite.InDelta(2.0, stored.AverageRating, 0.001)
	suite.Equal(1, stored.ReviewCount)

	reviews := suite.store.Repository().Review
	listed, err := reviews.FindByResortID(suite.ctx, resort.ID, 10, 0)
	suite.Require().NoError(err)
	suite.Require().Len(listed, 1)
	suite.Equal(suite.admin.ID, listed[0].UserID)

	total, err := reviews.CountAll(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Equal(2, suite.store.ReviewCount(), "rows stay in the table")
}

func (suite *UserServiceTestSuite) TestDeleteUserRejectsSelf() {
	err := suite.service.DeleteUser(suite.ctx, suite.admin.ID.String(), suite.admin.ID.String())
	suite.ErrorContains(err, "forbidden")
}

func (suite *UserServiceTestSuite) TestPromoteByEmail() {
	resp, err := suite.service.PromoteByEmail(suite.ctx, "Skier@Example.com")
	suite.Require().NoError(err)
	suite.True(resp.IsAdmin)

	_, err = suite.service.PromoteByEmail(suite.ctx, "skier@example.com")
	suite.ErrorContains(err, "already")

	_, err = suite.service.PromoteByEmail(suite.ctx, "ghost@example.com")
	suite.ErrorContains(err, "not found")
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func ptr[T any](v T) *T {
	return &v
}
