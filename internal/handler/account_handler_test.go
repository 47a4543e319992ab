package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ugportal-api/internal/dto"
	"github.com/noah-isme/ugportal-api/internal/models"
	appErrors "github.com/noah-isme/ugportal-api/pkg/errors"
)

type fakeAuthSrv struct {
	role models.UserRole
	req  models.LoginRequest
	err  error
}

func (f *fakeAuthSrv) Login(_ context.Context, role models.UserRole, req models.LoginRequest) (*models.LoginResponse, error) {
	f.role = role
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.LoginResponse{Token: "signed", ExpiresIn: 3600, Role: role}, nil
}

type fakeStudentSrv struct {
	registerErr error
	enrollID    string
	enrollReq   dto.EnrollRequest
	enrollErr   error
	linkReq     dto.LinkSubjectRequest
	profileID   string
}

func (f *fakeStudentSrv) Register(_ context.Context, req dto.RegisterStudentRequest) (*models.Student, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.Student{ID: "s1", RollNumber: req.RollNumber, Name: req.Name, PasswordHash: "hash"}, nil
}

func (f *fakeStudentSrv) Profile(_ context.Context, id string) (*models.Student, error) {
	f.profileID = id
	return &models.Student{ID: id, Name: "Asha", PasswordHash: "hash"}, nil
}

func (f *fakeStudentSrv) UpdateProfile(_ context.Context, id string, req dto.UpdateStudentProfileRequest) (*models.Student, error) {
	return &models.Student{ID: id, Name: req.Name, Email: req.Email}, nil
}

func (f *fakeStudentSrv) AvailableSubjects(context.Context, string) (*dto.AvailableSubjectsResponse, error) {
	return &dto.AvailableSubjectsResponse{CurrentSubjects: []models.Subject{}, AvailableSubjects: []models.Subject{{ID: "sub"}}}, nil
}

func (f *fakeStudentSrv) Enroll(_ context.Context, id string, req dto.EnrollRequest) ([]models.Subject, error) {
	f.enrollID = id
	f.enrollReq = req
	if f.enrollErr != nil {
		return nil, f.enrollErr
	}
	subjects := make([]models.Subject, len(req.SubjectIDs))
	for i, subjectID := range req.SubjectIDs {
		subjects[i] = models.Subject{ID: subjectID}
	}
	return subjects, nil
}

func (f *fakeStudentSrv) LinkSubjects(_ context.Context, req dto.LinkSubjectRequest) error {
	f.linkReq = req
	return nil
}

type fakeProfessorSrv struct {
	createdBy  string
	createReq  dto.CreateSubjectRequest
	uploadedBy string
	marksReq   dto.UploadMarksRequest
	marksErr   error
}

func (f *fakeProfessorSrv) Register(_ context.Context, req dto.RegisterProfessorRequest) (*models.Professor, error) {
	return &models.Professor{ID: "p1", Name: req.Name}, nil
}

func (f *fakeProfessorSrv) Profile(_ context.Context, id string) (*models.Professor, error) {
	return &models.Professor{ID: id}, nil
}

func (f *fakeProfessorSrv) UpdateProfile(_ context.Context, id string, req dto.UpdateProfessorProfileRequest) (*models.Professor, error) {
	return &models.Professor{ID: id, Name: req.Name}, nil
}

func (f *fakeProfessorSrv) Dashboard(_ context.Context, id string) (*dto.ProfessorDashboardResponse, error) {
	return &dto.ProfessorDashboardResponse{Professor: &models.Professor{ID: id}, Subjects: []models.Subject{}}, nil
}

func (f *fakeProfessorSrv) CreateSubject(_ context.Context, professorID string, req dto.CreateSubjectRequest) (*models.Subject, error) {
	f.createdBy = professorID
	f.createReq = req
	return &models.Subject{ID: "sub", Name: req.Name, Code: req.Code, Branch: req.Branch, ProfessorID: professorID}, nil
}

func (f *fakeProfessorSrv) UploadMarks(_ context.Context, professorID string, req dto.UploadMarksRequest) (*models.Mark, error) {
	f.uploadedBy = professorID
	f.marksReq = req
	if f.marksErr != nil {
		return nil, f.marksErr
	}
	return &models.Mark{ID: "m1", StudentID: req.StudentID, SubjectID: req.SubjectID, Type: req.Type, UploadedBy: professorID}, nil
}

func TestAuthHandlerLoginRoutesRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeAuthSrv{}
	handler := NewAuthHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/professor/login", map[string]string{"email": "p@uni.edu", "password": "secret"})
	c.Request.Header.Set("User-Agent", "portal-test")

	handler.ProfessorLogin(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleProfessor, fake.role)
	assert.Equal(t, "p@uni.edu", fake.req.Email)
	assert.Equal(t, "portal-test", fake.req.UserAgent)
	assert.JSONEq(t, `{"token":"signed","expiresIn":3600,"role":"PROFESSOR"}`, rec.Body.String())
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&fakeAuthSrv{err: appErrors.ErrInvalidCredentials})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/student/login", map[string]string{"email": "s@uni.edu", "password": "nope"})

	handler.StudentLogin(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")
}

func TestStudentHandlerRegisterHidesPassword(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&fakeStudentSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/student/register", map[string]string{
		"rollNumber": "R1", "name": "Asha", "email": "a@uni.edu", "password": "secret1", "branch": "CSE", "section": "A",
	})

	handler.Register(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hash")
	assert.Contains(t, rec.Body.String(), `"rollNumber":"R1"`)
}

func TestStudentHandlerRegisterConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&fakeStudentSrv{registerErr: appErrors.Clone(appErrors.ErrConflict, "Student already exists")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/student/register", map[string]string{"rollNumber": "R1"})

	handler.Register(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Student already exists")
}

func TestStudentHandlerEnrollUsesCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeStudentSrv{}
	handler := NewStudentHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/student/enroll", map[string][]string{"subjectIds": {"sub", "os"}})
	withClaims(c, "s1", models.RoleStudent)

	handler.Enroll(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", fake.enrollID)
	assert.Equal(t, []string{"sub", "os"}, fake.enrollReq.SubjectIDs)
	var body struct {
		Message          string `json:"message"`
		EnrolledSubjects []struct {
			ID string `json:"_id"`
		} `json:"enrolledSubjects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Successfully enrolled in subjects", body.Message)
	require.Len(t, body.EnrolledSubjects, 2)
	assert.Equal(t, "os", body.EnrolledSubjects[1].ID)
}

func TestStudentHandlerEnrollRejectsForeignBranch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&fakeStudentSrv{enrollErr: appErrors.Clone(appErrors.ErrValidation, "Some subjects are invalid or not available for your branch")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/student/enroll", map[string][]string{"subjectIds": {"other"}})
	withClaims(c, "s1", models.RoleStudent)

	handler.Enroll(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Some subjects are invalid or not available for your branch")
}

func TestStudentHandlerLinkSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeStudentSrv{}
	handler := NewStudentHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/student/linksubject", map[string]interface{}{"rollNumber": "R1", "subjectIds": []string{"sub"}})

	handler.LinkSubject(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Subjects added to student successfully"}`, rec.Body.String())
	assert.Equal(t, "R1", fake.linkReq.RollNumber)
}

func TestStudentHandlerProfileRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&fakeStudentSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/profile", nil)

	handler.Profile(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStudentHandlerAvailableSubjects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&fakeStudentSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/available-subjects", nil)
	withClaims(c, "s1", models.RoleStudent)

	handler.AvailableSubjects(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body["currentSubjects"], 0)
	require.Len(t, body["availableSubjects"], 1)
	assert.Equal(t, "sub", body["availableSubjects"][0]["_id"])
}

func TestProfessorHandlerCreateSubject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeProfessorSrv{}
	handler := NewProfessorHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/professor/create-subject", map[string]string{"name": "Databases", "code": "CS301", "branch": "CSE"})
	withClaims(c, "p1", models.RoleProfessor)

	handler.CreateSubject(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "p1", fake.createdBy)
	var body struct {
		Message string `json:"message"`
		Subject struct {
			ID        string `json:"_id"`
			Professor string `json:"professor"`
		} `json:"subject"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Subject created and assigned successfully", body.Message)
	assert.Equal(t, "sub", body.Subject.ID)
	assert.Equal(t, "p1", body.Subject.Professor)
}

func TestProfessorHandlerDashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProfessorHandler(&fakeProfessorSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/professor/dashboard", nil)
	withClaims(c, "p1", models.RoleProfessor)

	handler.Dashboard(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hasSubjects":false`)
}

func TestProfessorHandlerUploadMarks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeProfessorSrv{}
	handler := NewProfessorHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/professor/upload-marks", map[string]interface{}{"studentId": "s1", "subjectId": "sub", "marks": 18.5, "type": "quiz"})
	withClaims(c, "p1", models.RoleProfessor)

	handler.UploadMarks(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Marks uploaded successfully"}`, rec.Body.String())
	assert.Equal(t, "p1", fake.uploadedBy)
	require.NotNil(t, fake.marksReq.Marks)
	assert.Equal(t, 18.5, *fake.marksReq.Marks)
}

func TestProfessorHandlerUploadMarksUnknownStudent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewProfessorHandler(&fakeProfessorSrv{marksErr: appErrors.Clone(appErrors.ErrNotFound, "Student not found")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(t, http.MethodPost, "/professor/upload-marks", map[string]interface{}{"studentId": "ghost", "subjectId": "sub", "marks": 3, "type": "quiz"})
	withClaims(c, "p1", models.RoleProfessor)

	handler.UploadMarks(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Student not found")
}
