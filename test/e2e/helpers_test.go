package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pagekeep/doclink"
	"github.com/pagekeep/doclink/infrastructure/api"
	apimiddleware "github.com/pagekeep/doclink/infrastructure/api/middleware"
	"github.com/pagekeep/doclink/infrastructure/api/v1/dto"
	"github.com/pagekeep/doclink/internal/config"
)

// adminUser is the superuser bootstrapped by doclink.New. Requests sent
// through the plain helper methods act as this principal.
const adminUser = "admin"

// TestServer wraps the API server for e2e testing.
type TestServer struct {
	t          *testing.T
	client     *doclink.Client
	httpServer *httptest.Server
}

// NewTestServer creates a test server backed by SQLite with the full API
// mounted and no API keys configured. The trigger scheduler is disabled so
// tests drive transitions explicitly.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	tmpDir := t.TempDir()
	client, err := doclink.New(
		doclink.WithSQLite(filepath.Join(tmpDir, "test.db")),
		doclink.WithDataDir(tmpDir),
		doclink.WithSchedulerConfig(config.NewSchedulerConfig().WithEnabled(false)),
	)
	if err != nil {
		t.Fatalf("create doclink client: %v", err)
	}

	apiServer := api.NewAPIServer(client, nil)
	router := apiServer.Router()
	router.Use(apimiddleware.CorrelationID)
	apiServer.MountRoutes()

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ts := &TestServer{
		t:          t,
		client:     client,
		httpServer: httptest.NewServer(router),
	}

	t.Cleanup(func() {
		ts.Close()
	})

	return ts
}

// URL returns the base URL of the test server.
func (ts *TestServer) URL() string {
	return ts.httpServer.URL
}

// Close shuts down the test server.
func (ts *TestServer) Close() {
	ts.httpServer.Close()
	_ = ts.client.Close()
}

// do performs a request as the given principal. An empty principal sends
// no identity header, making the request anonymous.
func (ts *TestServer) do(method, path, principal, contentType string, body io.Reader) *http.Response {
	ts.t.Helper()

	req, err := http.NewRequest(method, ts.URL()+path, body)
	if err != nil {
		ts.t.Fatalf("create %s request: %v", method, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if principal != "" {
		req.Header.Set(apimiddleware.PrincipalHeader, principal)
	}

	resp, err := ts.httpServer.Client().Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// jsonBody marshals a request body to JSON.
func (ts *TestServer) jsonBody(body any) io.Reader {
	ts.t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		ts.t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

// GET performs a GET request as admin and returns the response.
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()
	return ts.do(http.MethodGet, path, adminUser, "", nil)
}

// GETAs performs a GET request as the given principal.
func (ts *TestServer) GETAs(principal, path string) *http.Response {
	ts.t.Helper()
	return ts.do(http.MethodGet, path, principal, "", nil)
}

// POST performs a POST request with JSON body as admin.
func (ts *TestServer) POST(path string, body any) *http.Response {
	ts.t.Helper()
	return ts.do(http.MethodPost, path, adminUser, "application/json", ts.jsonBody(body))
}

// POSTAs performs a POST request with JSON body as the given principal.
func (ts *TestServer) POSTAs(principal, path string, body any) *http.Response {
	ts.t.Helper()
	return ts.do(http.MethodPost, path, principal, "application/json", ts.jsonBody(body))
}

// PUT performs a PUT request with JSON body as admin.
func (ts *TestServer) PUT(path string, body any) *http.Response {
	ts.t.Helper()
	return ts.do(http.MethodPut, path, adminUser, "application/json", ts.jsonBody(body))
}

// PUTAs performs a PUT request with JSON body as the given principal.
func (ts *TestServer) PUTAs(principal, path string, body any) *http.Response {
	ts.t.Helper()
	return ts.do(http.MethodPut, path, principal, "application/json", ts.jsonBody(body))
}

// PUTRaw performs a PUT request with a raw octet-stream payload as admin.
// Version content uploads use this.
func (ts *TestServer) PUTRaw(path string, payload []byte) *http.Response {
	ts.t.Helper()
	return ts.do(http.MethodPut, path, adminUser, "application/octet-stream", bytes.NewReader(payload))
}

// DELETE performs a DELETE request as admin.
func (ts *TestServer) DELETE(path string) *http.Response {
	ts.t.Helper()
	return ts.do(http.MethodDelete, path, adminUser, "", nil)
}

// DELETEAs performs a DELETE request as the given principal.
func (ts *TestServer) DELETEAs(principal, path string) *http.Response {
	ts.t.Helper()
	return ts.do(http.MethodDelete, path, principal, "", nil)
}

// DecodeJSON decodes the response body as JSON into v.
func (ts *TestServer) DecodeJSON(resp *http.Response, v any) {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		ts.t.Fatalf("decode response: %v", err)
	}
}

// ReadBody reads and returns the response body as a string.
func (ts *TestServer) ReadBody(resp *http.Response) string {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatalf("read body: %v", err)
	}
	return string(body)
}

// resourceID asserts the response status and returns the numeric ID of the
// resource in the response data.
func (ts *TestServer) resourceID(resp *http.Response, wantStatus int) int64 {
	ts.t.Helper()

	if resp.StatusCode != wantStatus {
		ts.t.Fatalf("status = %d, want %d: %s", resp.StatusCode, wantStatus, ts.ReadBody(resp))
	}

	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	ts.DecodeJSON(resp, &body)

	id, err := strconv.ParseInt(body.Data.ID, 10, 64)
	if err != nil {
		ts.t.Fatalf("parse resource id %q: %v", body.Data.ID, err)
	}
	return id
}

// expectStatus asserts the response status and drains the body.
func (ts *TestServer) expectStatus(resp *http.Response, wantStatus int) {
	ts.t.Helper()
	if resp.StatusCode != wantStatus {
		ts.t.Fatalf("status = %d, want %d: %s", resp.StatusCode, wantStatus, ts.ReadBody(resp))
	}
	_ = resp.Body.Close()
}

// CreateDocumentType creates a document type over the API.
func (ts *TestServer) CreateDocumentType(label string) int64 {
	ts.t.Helper()
	body := dto.DocumentTypeRequest{
		Data: dto.DocumentTypeData{
			Type:       "document-type",
			Attributes: dto.DocumentTypeAttributes{Label: label},
		},
	}
	return ts.resourceID(ts.POST("/api/v1/document-types", body), http.StatusCreated)
}

// CreateDocument creates a document of the given type over the API.
func (ts *TestServer) CreateDocument(typeID int64, label string) int64 {
	ts.t.Helper()
	return ts.CreateDocumentWithDetails(typeID, label, "", "")
}

// CreateDocumentWithDetails creates a document with description and
// language set.
func (ts *TestServer) CreateDocumentWithDetails(typeID int64, label, description, language string) int64 {
	ts.t.Helper()
	body := dto.DocumentCreateRequest{
		Data: dto.DocumentCreateData{
			Type: "document",
			Attributes: dto.DocumentCreateAttributes{
				DocumentTypeID: typeID,
				Label:          label,
				Description:    description,
				Language:       language,
			},
		},
	}
	return ts.resourceID(ts.POST("/api/v1/documents", body), http.StatusCreated)
}

// CreateUser creates an active, non-privileged user over the API.
func (ts *TestServer) CreateUser(username string) int64 {
	ts.t.Helper()
	body := dto.UserCreateRequest{
		Data: dto.UserCreateData{
			Type:       "user",
			Attributes: dto.UserCreateAttributes{Username: username},
		},
	}
	return ts.resourceID(ts.POST("/api/v1/users", body), http.StatusCreated)
}

// SetUserFlags updates a user's active and superuser flags. Nil flags are
// left unchanged.
func (ts *TestServer) SetUserFlags(userID int64, active, superuser *bool) {
	ts.t.Helper()
	body := dto.UserUpdateRequest{
		Data: dto.UserUpdateData{
			Type: "user",
			Attributes: dto.UserUpdateAttributes{
				IsActive:    active,
				IsSuperuser: superuser,
			},
		},
	}
	ts.expectStatus(ts.PUT("/api/v1/users/"+strconv.FormatInt(userID, 10), body), http.StatusOK)
}

func boolPtr(b bool) *bool { return &b }

// Grant creates an access entry for a user. Empty objectKind grants the
// permission globally.
func (ts *TestServer) Grant(userID int64, permission, objectKind string, objectID int64) int64 {
	ts.t.Helper()
	body := dto.AccessEntryCreateRequest{
		Data: dto.AccessEntryCreateData{
			Type: "access-entry",
			Attributes: dto.AccessEntryCreateAttributes{
				UserID:     userID,
				Permission: permission,
				ObjectKind: objectKind,
				ObjectID:   objectID,
			},
		},
	}
	return ts.resourceID(ts.POST("/api/v1/access-entries", body), http.StatusCreated)
}

// CreateMetadataType creates a metadata type over the API.
func (ts *TestServer) CreateMetadataType(name, label string) int64 {
	ts.t.Helper()
	body := dto.MetadataTypeCreateRequest{
		Data: dto.MetadataTypeCreateData{
			Type:       "metadata-type",
			Attributes: dto.MetadataTypeCreateAttributes{Name: name, Label: label},
		},
	}
	return ts.resourceID(ts.POST("/api/v1/metadata-types", body), http.StatusCreated)
}

// SetMetadata sets a metadata value on a document.
func (ts *TestServer) SetMetadata(documentID, metadataTypeID int64, value string) {
	ts.t.Helper()
	body := dto.MetadataValueRequest{
		Data: dto.MetadataValueData{
			Type: "metadata-value",
			Attributes: dto.MetadataValueAttributes{
				MetadataTypeID: metadataTypeID,
				Value:          value,
			},
		},
	}
	ts.expectStatus(ts.PUT("/api/v1/documents/"+strconv.FormatInt(documentID, 10)+"/metadata", body), http.StatusOK)
}

// CreateSmartLink creates an enabled smart link over the API.
func (ts *TestServer) CreateSmartLink(label string) int64 {
	ts.t.Helper()
	body := dto.SmartLinkCreateRequest{
		Data: dto.SmartLinkCreateData{
			Type:       "smart-link",
			Attributes: dto.SmartLinkCreateAttributes{Label: label},
		},
	}
	return ts.resourceID(ts.POST("/api/v1/smart-links", body), http.StatusCreated)
}

// AssignLinkType assigns a document type to a smart link.
func (ts *TestServer) AssignLinkType(linkID, typeID int64) {
	ts.t.Helper()
	body := dto.TypeAssignmentRequest{
		Data: dto.TypeAssignmentData{
			Type:       "type-assignment",
			Attributes: dto.TypeAssignmentAttributes{DocumentTypeID: typeID},
		},
	}
	ts.expectStatus(ts.POST("/api/v1/smart-links/"+strconv.FormatInt(linkID, 10)+"/document-types", body), http.StatusNoContent)
}

// AddCondition adds a literal condition to a smart link.
func (ts *TestServer) AddCondition(linkID int64, field, operator, value string) int64 {
	ts.t.Helper()
	body := dto.ConditionRequest{
		Data: dto.ConditionData{
			Type: "smart-link-condition",
			Attributes: dto.ConditionAttributes{
				TargetField:  field,
				Operator:     operator,
				OperandValue: value,
			},
		},
	}
	return ts.resourceID(ts.POST("/api/v1/smart-links/"+strconv.FormatInt(linkID, 10)+"/conditions", body), http.StatusCreated)
}

// CreateWorkflow creates a workflow over the API.
func (ts *TestServer) CreateWorkflow(label string) int64 {
	ts.t.Helper()
	body := dto.WorkflowCreateRequest{
		Data: dto.WorkflowCreateData{
			Type:       "workflow",
			Attributes: dto.WorkflowCreateAttributes{Label: label},
		},
	}
	return ts.resourceID(ts.POST("/api/v1/workflows", body), http.StatusCreated)
}

// AssignWorkflowType assigns a document type to a workflow.
func (ts *TestServer) AssignWorkflowType(workflowID, typeID int64) {
	ts.t.Helper()
	body := dto.TypeAssignmentRequest{
		Data: dto.TypeAssignmentData{
			Type:       "type-assignment",
			Attributes: dto.TypeAssignmentAttributes{DocumentTypeID: typeID},
		},
	}
	ts.expectStatus(ts.POST("/api/v1/workflows/"+strconv.FormatInt(workflowID, 10)+"/document-types", body), http.StatusNoContent)
}

// AddState adds a state to a workflow.
func (ts *TestServer) AddState(workflowID int64, label string, initial bool, completion int) int64 {
	ts.t.Helper()
	body := dto.StateRequest{
		Data: dto.StateData{
			Type: "workflow-state",
			Attributes: dto.StateAttributes{
				Label:      label,
				Initial:    initial,
				Completion: completion,
			},
		},
	}
	return ts.resourceID(ts.POST("/api/v1/workflows/"+strconv.FormatInt(workflowID, 10)+"/states", body), http.StatusCreated)
}

// AddTransition adds a transition between two states of a workflow.
func (ts *TestServer) AddTransition(workflowID int64, label string, originID, destinationID int64) int64 {
	ts.t.Helper()
	body := dto.TransitionRequest{
		Data: dto.TransitionData{
			Type: "workflow-transition",
			Attributes: dto.TransitionAttributes{
				Label:              label,
				OriginStateID:      originID,
				DestinationStateID: destinationID,
			},
		},
	}
	return ts.resourceID(ts.POST("/api/v1/workflows/"+strconv.FormatInt(workflowID, 10)+"/transitions", body), http.StatusCreated)
}

// LaunchInstance launches a workflow instance on a document.
func (ts *TestServer) LaunchInstance(documentID, workflowID int64) int64 {
	ts.t.Helper()
	body := dto.InstanceLaunchRequest{
		Data: dto.InstanceLaunchData{
			Type:       "workflow-instance",
			Attributes: dto.InstanceLaunchAttributes{WorkflowID: workflowID},
		},
	}
	return ts.resourceID(ts.POST("/api/v1/documents/"+strconv.FormatInt(documentID, 10)+"/workflow-instances", body), http.StatusCreated)
}
