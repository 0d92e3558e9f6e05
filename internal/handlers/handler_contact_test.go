package handlers_test

import (
	"net/http"

	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/stretchr/testify/mock"
)

func contactBody() map[string]string {
	return map[string]string{
		"name":    "  Ayşe Yılmaz ",
		"email":   "ayse@example.com",
		"company": "Kaplan İnşaat",
		"message": "Demo talep ediyoruz.",
	}
}

func (suite *HandlerTestSuite) TestContact_Success() {
	suite.mockContact.On("Submit", mock.Anything, mock.MatchedBy(func(req dto.ContactRequest) bool {
		return req.Name == "Ayşe Yılmaz" && req.Email == "ayse@example.com"
	})).Return(nil).Once()

	w := suite.do(http.MethodPost, "/api/contact", contactBody(), "")

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ContactResponse
	suite.decode(w, &resp)
	suite.True(resp.OK)
}

func (suite *HandlerTestSuite) TestContact_BadJSON() {
	w := suite.do(http.MethodPost, "/api/contact", "{not json", "")

	suite.Equal(http.StatusBadRequest, w.Code)
	var resp dto.ContactResponse
	suite.decode(w, &resp)
	suite.False(resp.OK)
	suite.Equal("Geçersiz JSON", resp.Error)
}

func (suite *HandlerTestSuite) TestContact_ValidationIssues() {
	body := contactBody()
	body["email"] = "not-an-email"
	body["message"] = "hi"

	w := suite.do(http.MethodPost, "/api/contact", body, "")

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp dto.ContactResponse
	suite.decode(w, &resp)
	suite.False(resp.OK)
	fields := map[string]string{}
	for _, issue := range resp.Issues {
		fields[issue.Field] = issue.Rule
	}
	suite.Equal("email", fields["email"])
	suite.Equal("min", fields["message"])
	suite.mockContact.AssertNotCalled(suite.T(), "Submit")
}

func (suite *HandlerTestSuite) TestContact_HoneypotIsDropped() {
	body := contactBody()
	body["website"] = "http://spam.example"

	w := suite.do(http.MethodPost, "/api/contact", body, "")

	suite.Equal(http.StatusOK, w.Code)
	suite.mockContact.AssertNotCalled(suite.T(), "Submit")
}

func (suite *HandlerTestSuite) TestContact_MailFailure() {
	suite.mockContact.On("Submit", mock.Anything, mock.Anything).Return(errStoreDown).Once()

	w := suite.do(http.MethodPost, "/api/contact", contactBody(), "")

	suite.Equal(http.StatusInternalServerError, w.Code)
	var resp dto.ContactResponse
	suite.decode(w, &resp)
	suite.Equal("E-posta gönderilemedi", resp.Error)
}
