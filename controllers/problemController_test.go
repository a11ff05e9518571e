package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"streetsense-be/models"
	"streetsense-be/repository"
	"streetsense-be/services"
)

type problemFixture struct {
	router   *gin.Engine
	problems *repository.MemoryProblemRepository
	users    *repository.MemoryUserRepository
	service  *services.ProblemService
	userID   primitive.ObjectID
}

// fakeAuth stands in for the JWT middleware so handler behavior is tested in
// isolation.
func fakeAuth(userID primitive.ObjectID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID.Hex())
		c.Next()
	}
}

func newProblemRouter(t *testing.T) *problemFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	problems := repository.NewMemoryProblemRepository()
	users := repository.NewMemoryUserRepository()
	service := services.NewProblemService(zap.NewNop(), problems, users)
	pc := NewProblemController(zap.NewNop(), service)
	sc := NewSearchController(zap.NewNop(), service)

	reporter := models.User{Name: "Asha", Email: "a@b.com", Role: models.RoleCitizen}
	if err := users.Create(context.Background(), &reporter); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}

	r := gin.New()
	auth := fakeAuth(reporter.ID)
	group := r.Group("/api/problems")
	group.GET("", pc.ListProblems)
	group.GET("/mine", auth, pc.GetMyProblems)
	group.GET("/:id", pc.GetProblem)
	group.POST("", auth, pc.CreateProblem)
	group.PATCH("/:id/status", auth, pc.UpdateStatus)
	group.POST("/:id/upvote", auth, pc.UpvoteProblem)
	group.POST("/:id/updates", auth, pc.AddUpdate)
	r.GET("/api/search/pincode/:pincode", sc.SearchByPincode)

	return &problemFixture{
		router:   r,
		problems: problems,
		users:    users,
		service:  service,
		userID:   reporter.ID,
	}
}

func (f *problemFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func createBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Pothole near bus stop",
		"description": "Deep pothole causing traffic",
		"category":    "1",
		"location": map[string]interface{}{
			"address": "12 MG Road, 400001, Surat",
			"lat":     21.17,
			"lng":     72.83,
		},
		"images": []string{"https://img.example/pothole.jpg"},
	}
}

func TestCreateProblem_Created(t *testing.T) {
	f := newProblemRouter(t)

	w := f.do(t, http.MethodPost, "/api/problems", createBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var got models.Problem
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Status != models.Reported {
		t.Fatalf("expected status reported, got %q", got.Status)
	}
	if got.ReportedBy != f.userID {
		t.Fatalf("expected reporter bound to the authenticated user")
	}
}

func TestCreateProblem_ValidationListsFields(t *testing.T) {
	f := newProblemRouter(t)

	w := f.do(t, http.MethodPost, "/api/problems", map[string]interface{}{"category": "9"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var resp struct {
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(resp.Fields) != 6 {
		t.Fatalf("expected all 6 invalid fields listed, got %v", resp.Fields)
	}
}

func TestGetProblem_NotFound(t *testing.T) {
	f := newProblemRouter(t)

	w := f.do(t, http.MethodGet, "/api/problems/"+primitive.NewObjectID().Hex(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = f.do(t, http.MethodGet, "/api/problems/not-an-id", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", w.Code)
	}
}

func TestGetProblem_ResolvesReporter(t *testing.T) {
	f := newProblemRouter(t)

	created := f.do(t, http.MethodPost, "/api/problems", createBody())
	var problem models.Problem
	if err := json.Unmarshal(created.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	w := f.do(t, http.MethodGet, "/api/problems/"+problem.ID.Hex(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var detail struct {
		ReporterName string `json:"reporterName"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if detail.ReporterName != "Asha" {
		t.Fatalf("expected reporter name resolved, got %q", detail.ReporterName)
	}
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	f := newProblemRouter(t)

	created := f.do(t, http.MethodPost, "/api/problems", createBody())
	var problem models.Problem
	if err := json.Unmarshal(created.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	path := fmt.Sprintf("/api/problems/%s/status", problem.ID.Hex())

	w := f.do(t, http.MethodPatch, path, map[string]string{"status": "in-progress"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated models.Problem
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if updated.Status != models.InProgress {
		t.Fatalf("expected in-progress, got %q", updated.Status)
	}

	if w := f.do(t, http.MethodPatch, path, map[string]string{}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing status, got %d", w.Code)
	}
	if w := f.do(t, http.MethodPatch, path, map[string]string{"status": "closed"}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", w.Code)
	}
	missing := fmt.Sprintf("/api/problems/%s/status", primitive.NewObjectID().Hex())
	if w := f.do(t, http.MethodPatch, missing, map[string]string{"status": "resolved"}); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUpvote_ReturnsUpdatedRecord(t *testing.T) {
	f := newProblemRouter(t)

	created := f.do(t, http.MethodPost, "/api/problems", createBody())
	var problem models.Problem
	if err := json.Unmarshal(created.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	path := fmt.Sprintf("/api/problems/%s/upvote", problem.ID.Hex())

	for i := 1; i <= 3; i++ {
		w := f.do(t, http.MethodPost, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var updated models.Problem
		if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if updated.Upvotes != int64(i) {
			t.Fatalf("expected %d upvotes, got %d", i, updated.Upvotes)
		}
	}

	missing := fmt.Sprintf("/api/problems/%s/upvote", primitive.NewObjectID().Hex())
	if w := f.do(t, http.MethodPost, missing, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAddUpdate_AppendsEntry(t *testing.T) {
	f := newProblemRouter(t)

	created := f.do(t, http.MethodPost, "/api/problems", createBody())
	var problem models.Problem
	if err := json.Unmarshal(created.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	path := fmt.Sprintf("/api/problems/%s/updates", problem.ID.Hex())

	w := f.do(t, http.MethodPost, path, map[string]string{"content": "crew dispatched", "author": "Municipal Corp"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated models.Problem
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(updated.Updates) != 1 || updated.Updates[0].Content != "crew dispatched" {
		t.Fatalf("expected appended update, got %+v", updated.Updates)
	}

	if w := f.do(t, http.MethodPost, path, map[string]string{"content": "   "}); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank content, got %d", w.Code)
	}
}

func TestListAndPincodeSearch(t *testing.T) {
	f := newProblemRouter(t)

	if w := f.do(t, http.MethodPost, "/api/problems", createBody()); w.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", w.Code)
	}
	other := createBody()
	other["title"] = "Broken streetlight"
	other["category"] = "4"
	other["location"] = map[string]interface{}{
		"address": "45 Ring Road, 395002, Surat",
		"lat":     21.19,
		"lng":     72.80,
	}
	if w := f.do(t, http.MethodPost, "/api/problems", other); w.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", w.Code)
	}

	w := f.do(t, http.MethodGet, "/api/problems", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var all []models.Problem
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(all))
	}

	w = f.do(t, http.MethodGet, "/api/problems?category=4&status=reported", nil)
	var filtered []models.Problem
	if err := json.Unmarshal(w.Body.Bytes(), &filtered); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Title != "Broken streetlight" {
		t.Fatalf("expected the streetlight problem, got %d", len(filtered))
	}

	w = f.do(t, http.MethodGet, "/api/search/pincode/400001", nil)
	var byPincode []models.Problem
	if err := json.Unmarshal(w.Body.Bytes(), &byPincode); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(byPincode) != 1 || byPincode[0].Location.Address != "12 MG Road, 400001, Surat" {
		t.Fatalf("expected the MG Road problem, got %d", len(byPincode))
	}

	w = f.do(t, http.MethodGet, "/api/search/pincode/999999", nil)
	var none []models.Problem
	if err := json.Unmarshal(w.Body.Bytes(), &none); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty result, got %d", len(none))
	}
}

func TestGetMyProblems(t *testing.T) {
	f := newProblemRouter(t)

	if w := f.do(t, http.MethodPost, "/api/problems", createBody()); w.Code != http.StatusCreated {
		t.Fatalf("seed create failed: %d", w.Code)
	}

	// A problem from another reporter must not appear under /mine.
	otherReporter := primitive.NewObjectID()
	lat, lng := 21.2, 72.8
	_, err := f.service.Create(context.Background(), services.CreateProblemInput{
		Title:       "Leaking pipeline",
		Description: "Water pooling on the road",
		Category:    string(models.Water),
		Address:     "7 Station Road, 395003, Surat",
		Lat:         &lat,
		Lng:         &lng,
		ReportedBy:  otherReporter,
	})
	if err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	w := f.do(t, http.MethodGet, "/api/problems/mine", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var mine []models.Problem
	if err := json.Unmarshal(w.Body.Bytes(), &mine); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ReportedBy != f.userID {
		t.Fatalf("expected only the caller's problems, got %d", len(mine))
	}
}
