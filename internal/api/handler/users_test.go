package handler

import (
	"net/http"
	"time"
)

func (s *HandlerTestSuite) TestVerifyUsername() {
	s.seedVerifiedUser("Test_User1", "test@example.com")

	w := s.do(http.MethodGet, "/api/verify-username?userName=Test_User1", nil)
	s.Equal(http.StatusOK, w.Code)

	resp := s.parse(w)
	s.Equal(true, resp["success"])
	data, ok := resp["data"].(map[string]any)
	s.Require().True(ok)
	s.Equal("Test_User1", data["userName"])
	s.Equal("test@example.com", data["email"])
	s.Equal(true, data["isAcceptingMessage"])
}

func (s *HandlerTestSuite) TestVerifyUsernameCached() {
	user := s.seedVerifiedUser("Test_User1", "test@example.com")

	w := s.do(http.MethodGet, "/api/verify-username?userName=Test_User1", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	// flip the flag, the cached profile is served until the TTL runs out
	s.Require().NoError(s.db.SetAcceptingMessages(s.T().Context(), user.ID, false))

	w = s.do(http.MethodGet, "/api/verify-username?userName=Test_User1", nil)
	s.Equal(http.StatusOK, w.Code)
	data, ok := s.parse(w)["data"].(map[string]any)
	s.Require().True(ok)
	s.Equal(true, data["isAcceptingMessage"])
}

func (s *HandlerTestSuite) TestVerifyUsernameNotFound() {
	s.seedUnverifiedUser("Pending_User1", "pending@example.com", "123456", time.Now().Add(time.Hour))

	// missing param
	w := s.do(http.MethodGet, "/api/verify-username", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("userName expected from query params", s.parse(w)["message"])

	// unverified users are invisible
	w = s.do(http.MethodGet, "/api/verify-username?userName=Pending_User1", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("user not found with this userName", s.parse(w)["message"])
}

func (s *HandlerTestSuite) TestValidateUsername() {
	s.seedVerifiedUser("Test_User1", "test@example.com")

	w := s.do(http.MethodGet, "/api/validate-username?userName=Test_User1", nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("User already exist with this userName", s.parse(w)["message"])

	w = s.do(http.MethodGet, "/api/validate-username?userName=Free_User2", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Valid userName", s.parse(w)["message"])

	w = s.do(http.MethodGet, "/api/validate-username?userName=bad", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestGetAllUsers() {
	s.seedVerifiedUser("Test_User1", "test@example.com")
	s.seedVerifiedUser("Other_User2", "other@example.com")

	w := s.do(http.MethodGet, "/api/get-all-users", nil)
	s.Equal(http.StatusOK, w.Code)

	resp := s.parse(w)
	s.Equal("user Send successfully", resp["message"])
	data, ok := resp["data"].(map[string]any)
	s.Require().True(ok)
	users, ok := data["users"].([]any)
	s.Require().True(ok)
	s.Len(users, 2)

	first, ok := users[0].(map[string]any)
	s.Require().True(ok)
	s.NotContains(first, "password")
	s.NotContains(first, "messages")
}
