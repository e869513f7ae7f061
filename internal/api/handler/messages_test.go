package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/whispr/internal/database"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func (s *HandlerTestSuite) TestSendMessage() {
	user := s.seedVerifiedUser("Test_User1", "test@example.com")

	w := s.do(http.MethodPost, "/api/send-message", gin.H{
		"userName": "Test_User1",
		"message":  "You are doing great!",
	})

	s.Equal(http.StatusOK, w.Code)
	s.Equal("Message sent successfully 🎉", s.parse(w)["message"])

	msgs, err := s.db.ListMessages(s.T().Context(), user.ID)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Equal("You are doing great!", msgs[0].Content)
	s.False(msgs[0].ID.IsZero())

	// the notification goes out asynchronously
	s.Eventually(func() bool {
		return s.mailer.notificationCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func (s *HandlerTestSuite) TestSendMessageParameterChecks() {
	w := s.do(http.MethodPost, "/api/send-message", gin.H{"message": "hi"})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("userName is required", s.parse(w)["message"])

	w = s.do(http.MethodPost, "/api/send-message", gin.H{"userName": "Test_User1"})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("message is required", s.parse(w)["message"])

	w = s.do(http.MethodPost, "/api/send-message", gin.H{
		"userName": "Test_User1",
		"message":  strings.Repeat("x", 501),
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("message should be less than 500 characters", s.parse(w)["message"])
}

func (s *HandlerTestSuite) TestSendMessageUnknownUser() {
	w := s.do(http.MethodPost, "/api/send-message", gin.H{
		"userName": "Nobody_Here1",
		"message":  "hello",
	})
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("username not found | wrong username", s.parse(w)["message"])
}

func (s *HandlerTestSuite) TestSendMessageNotAccepting() {
	user := s.seedVerifiedUser("Test_User1", "test@example.com")
	s.Require().NoError(s.db.SetAcceptingMessages(s.T().Context(), user.ID, false))

	w := s.do(http.MethodPost, "/api/send-message", gin.H{
		"userName": "Test_User1",
		"message":  "hello",
	})

	// still a success response, but nothing may be stored
	s.Equal(http.StatusOK, w.Code)
	resp := s.parse(w)
	s.Equal(true, resp["success"])
	s.Equal("User is busy | Not accepting your msg", resp["message"])

	msgs, err := s.db.ListMessages(s.T().Context(), user.ID)
	s.Require().NoError(err)
	s.Empty(msgs)
	s.Equal(0, s.mailer.notificationCount())
}

func (s *HandlerTestSuite) TestGetMessagesNewestFirst() {
	user := s.seedVerifiedUser("Test_User1", "test@example.com")
	now := time.Now()
	for i, content := range []string{"oldest", "middle", "newest"} {
		s.Require().NoError(s.db.AppendMessage(s.T().Context(), user.ID, database.Message{
			ID:        bson.NewObjectID(),
			Content:   content,
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}))
	}

	w := s.do(http.MethodGet, "/api/get-messages", nil, s.tokenCookie(user))
	s.Equal(http.StatusOK, w.Code)

	resp := s.parse(w)
	msgs, ok := resp["messages"].([]any)
	s.Require().True(ok)
	s.Require().Len(msgs, 3)
	s.Equal("newest", msgs[0].(map[string]any)["content"])
	s.Equal("middle", msgs[1].(map[string]any)["content"])
	s.Equal("oldest", msgs[2].(map[string]any)["content"])
}

func (s *HandlerTestSuite) TestGetMessagesEmpty() {
	user := s.seedVerifiedUser("Test_User1", "test@example.com")

	w := s.do(http.MethodGet, "/api/get-messages", nil, s.tokenCookie(user))
	s.Equal(http.StatusOK, w.Code)
	s.Equal("no messages to show", s.parse(w)["message"])
}

func (s *HandlerTestSuite) TestGetMessagesRequiresSession() {
	w := s.do(http.MethodGet, "/api/get-messages", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("You are not logged in", s.parse(w)["message"])
}

func (s *HandlerTestSuite) TestDeleteMessage() {
	user := s.seedVerifiedUser("Test_User1", "test@example.com")
	keep := database.Message{ID: bson.NewObjectID(), Content: "keep", CreatedAt: time.Now()}
	drop := database.Message{ID: bson.NewObjectID(), Content: "drop", CreatedAt: time.Now()}
	s.Require().NoError(s.db.AppendMessage(s.T().Context(), user.ID, keep))
	s.Require().NoError(s.db.AppendMessage(s.T().Context(), user.ID, drop))

	w := s.do(http.MethodDelete, "/api/delete-message?msgId="+drop.ID.Hex(), nil, s.tokenCookie(user))
	s.Equal(http.StatusOK, w.Code)
	s.Equal("message deleted successfully 🎉🎉", s.parse(w)["message"])

	msgs, err := s.db.ListMessages(s.T().Context(), user.ID)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Equal("keep", msgs[0].Content)
}

func (s *HandlerTestSuite) TestDeleteMessageMissingID() {
	user := s.seedVerifiedUser("Test_User1", "test@example.com")

	w := s.do(http.MethodDelete, "/api/delete-message", nil, s.tokenCookie(user))
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Provide msgId in queryParams", s.parse(w)["message"])
}

func (s *HandlerTestSuite) TestDeleteMessageUnknownUser() {
	ghost := &database.User{ID: bson.NewObjectID(), Username: "Ghost_User1", IsVerified: true}

	w := s.do(http.MethodDelete, "/api/delete-message?msgId="+bson.NewObjectID().Hex(), nil, s.tokenCookie(ghost))
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("User not found with given session", s.parse(w)["message"])
}

func (s *HandlerTestSuite) TestAcceptMessagesRoundTrip() {
	user := s.seedVerifiedUser("Test_User1", "test@example.com")
	cookie := s.tokenCookie(user)

	w := s.do(http.MethodGet, "/api/accepting-messages", nil, cookie)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(true, s.parse(w)["isAcceptingMessage"])

	w = s.do(http.MethodPost, "/api/accepting-messages", gin.H{"isAcceptingMessage": false}, cookie)
	s.Equal(http.StatusOK, w.Code)
	resp := s.parse(w)
	s.Equal("toggle the accept-messaging field successfully 🎉", resp["message"])
	s.Equal(false, resp["isAcceptingMessage"])

	// the flag is read fresh from the database, not from the stale token
	w = s.do(http.MethodGet, "/api/accepting-messages", nil, cookie)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(false, s.parse(w)["isAcceptingMessage"])
}

func (s *HandlerTestSuite) TestSetAcceptMessagesMissingBody() {
	user := s.seedVerifiedUser("Test_User1", "test@example.com")

	w := s.do(http.MethodPost, "/api/accepting-messages", gin.H{}, s.tokenCookie(user))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("isAcceptingMessage expected from body", s.parse(w)["message"])
}

func (s *HandlerTestSuite) TestAcceptMessagesUnknownUser() {
	ghost := &database.User{ID: bson.NewObjectID(), Username: "Ghost_User1", IsVerified: true}

	w := s.do(http.MethodGet, "/api/accepting-messages", nil, s.tokenCookie(ghost))
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("User doesn't exist", s.parse(w)["message"])
}
