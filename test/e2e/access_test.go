package e2e_test

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
	"github.com/pagekeep/doclink/infrastructure/api/v1/dto"
)

func TestAccess_Anonymous(t *testing.T) {
	ts := NewTestServer(t)

	typeID := ts.CreateDocumentType("Contracts")
	docID := ts.CreateDocument(typeID, "NDA")

	// Lists are open but filtered down to nothing for anonymous callers.
	var list struct {
		Data []jsonapi.Resource `json:"data"`
	}
	resp := ts.GETAs("", "/api/v1/documents")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	ts.DecodeJSON(resp, &list)
	if len(list.Data) != 0 {
		t.Errorf("len(data) = %d for anonymous, want 0", len(list.Data))
	}

	resp = ts.GETAs("", fmt.Sprintf("/api/v1/documents/%d", docID))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("get: status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	_ = resp.Body.Close()

	body := dto.DocumentTypeRequest{
		Data: dto.DocumentTypeData{
			Type:       "document-type",
			Attributes: dto.DocumentTypeAttributes{Label: "Sneaky"},
		},
	}
	resp = ts.POSTAs("", "/api/v1/document-types", body)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("create: status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	_ = resp.Body.Close()
}

func TestAccess_UnknownPrincipal(t *testing.T) {
	ts := NewTestServer(t)

	typeID := ts.CreateDocumentType("Contracts")
	docID := ts.CreateDocument(typeID, "NDA")

	// An identity header naming no known user is treated as anonymous.
	resp := ts.GETAs("ghost", fmt.Sprintf("/api/v1/documents/%d", docID))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("get: status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	_ = resp.Body.Close()

	var list struct {
		Data []jsonapi.Resource `json:"data"`
	}
	resp = ts.GETAs("ghost", "/api/v1/documents")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	ts.DecodeJSON(resp, &list)
	if len(list.Data) != 0 {
		t.Errorf("len(data) = %d for unknown principal, want 0", len(list.Data))
	}
}

func TestAccess_ObjectGrant(t *testing.T) {
	ts := NewTestServer(t)

	typeID := ts.CreateDocumentType("Contracts")
	doc1 := ts.CreateDocument(typeID, "NDA")
	doc2 := ts.CreateDocument(typeID, "MSA")
	carolID := ts.CreateUser("carol")

	resp := ts.GETAs("carol", fmt.Sprintf("/api/v1/documents/%d", doc1))
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("get without grant: status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
	_ = resp.Body.Close()

	ts.Grant(carolID, "document_view", "document", doc1)

	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	resp = ts.GETAs("carol", "/api/v1/documents")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	ts.DecodeJSON(resp, &list)
	if len(list.Data) != 1 {
		t.Fatalf("len(data) = %d, want 1", len(list.Data))
	}
	if list.Data[0].ID != fmt.Sprintf("%d", doc1) {
		t.Errorf("visible document = %s, want %d", list.Data[0].ID, doc1)
	}

	resp = ts.GETAs("carol", fmt.Sprintf("/api/v1/documents/%d", doc1))
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get granted: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	_ = resp.Body.Close()

	// The grant is scoped to doc1 only.
	resp = ts.GETAs("carol", fmt.Sprintf("/api/v1/documents/%d", doc2))
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("get other: status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
	_ = resp.Body.Close()

	create := dto.DocumentCreateRequest{
		Data: dto.DocumentCreateData{
			Type: "document",
			Attributes: dto.DocumentCreateAttributes{
				DocumentTypeID: typeID,
				Label:          "Carol's draft",
			},
		},
	}
	resp = ts.POSTAs("carol", "/api/v1/documents", create)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("create without grant: status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
	_ = resp.Body.Close()

	ts.Grant(carolID, "document_create", "", 0)

	resp = ts.POSTAs("carol", "/api/v1/documents", create)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("create with grant: status = %d, want %d: %s", resp.StatusCode, http.StatusCreated, ts.ReadBody(resp))
	} else {
		_ = resp.Body.Close()
	}
}

func TestAccess_RevokeRestoresDenial(t *testing.T) {
	ts := NewTestServer(t)

	typeID := ts.CreateDocumentType("Contracts")
	docID := ts.CreateDocument(typeID, "NDA")
	carolID := ts.CreateUser("carol")

	entryID := ts.Grant(carolID, "document_view", "document", docID)

	docPath := fmt.Sprintf("/api/v1/documents/%d", docID)
	resp := ts.GETAs("carol", docPath)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get granted: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	_ = resp.Body.Close()

	resp = ts.DELETE(fmt.Sprintf("/api/v1/access-entries/%d", entryID))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("revoke: status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	_ = resp.Body.Close()

	// The cached decision is invalidated along with the entry.
	resp = ts.GETAs("carol", docPath)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("get revoked: status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
	_ = resp.Body.Close()
}

func TestAccess_DeactivatedUser(t *testing.T) {
	ts := NewTestServer(t)

	typeID := ts.CreateDocumentType("Contracts")
	docID := ts.CreateDocument(typeID, "NDA")
	carolID := ts.CreateUser("carol")
	ts.Grant(carolID, "document_view", "document", docID)

	docPath := fmt.Sprintf("/api/v1/documents/%d", docID)
	resp := ts.GETAs("carol", docPath)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get active: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	_ = resp.Body.Close()

	ts.SetUserFlags(carolID, boolPtr(false), nil)

	resp = ts.GETAs("carol", docPath)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("get inactive: status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
	_ = resp.Body.Close()

	var list struct {
		Data []jsonapi.Resource `json:"data"`
	}
	resp = ts.GETAs("carol", "/api/v1/documents")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list inactive: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	ts.DecodeJSON(resp, &list)
	if len(list.Data) != 0 {
		t.Errorf("len(data) = %d for inactive user, want 0", len(list.Data))
	}
}

func TestAccess_Superuser(t *testing.T) {
	ts := NewTestServer(t)

	typeID := ts.CreateDocumentType("Contracts")
	doc1 := ts.CreateDocument(typeID, "NDA")
	doc2 := ts.CreateDocument(typeID, "MSA")
	carolID := ts.CreateUser("carol")

	ts.SetUserFlags(carolID, nil, boolPtr(true))

	var list struct {
		Data []jsonapi.Resource `json:"data"`
	}
	resp := ts.GETAs("carol", "/api/v1/documents")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	ts.DecodeJSON(resp, &list)
	if len(list.Data) != 2 {
		t.Errorf("len(data) = %d for superuser, want 2", len(list.Data))
	}

	for _, docID := range []int64{doc1, doc2} {
		resp = ts.GETAs("carol", fmt.Sprintf("/api/v1/documents/%d", docID))
		if resp.StatusCode != http.StatusOK {
			t.Errorf("get %d: status = %d, want %d", docID, resp.StatusCode, http.StatusOK)
		}
		_ = resp.Body.Close()
	}

	create := dto.DocumentCreateRequest{
		Data: dto.DocumentCreateData{
			Type: "document",
			Attributes: dto.DocumentCreateAttributes{
				DocumentTypeID: typeID,
				Label:          "Superuser draft",
			},
		},
	}
	resp = ts.POSTAs("carol", "/api/v1/documents", create)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("create: status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	_ = resp.Body.Close()
}

func TestAccess_GrantValidationAndCatalog(t *testing.T) {
	ts := NewTestServer(t)

	carolID := ts.CreateUser("carol")

	grant := func(permission, objectKind string, objectID int64) *http.Response {
		body := dto.AccessEntryCreateRequest{
			Data: dto.AccessEntryCreateData{
				Type: "access-entry",
				Attributes: dto.AccessEntryCreateAttributes{
					UserID:     carolID,
					Permission: permission,
					ObjectKind: objectKind,
					ObjectID:   objectID,
				},
			},
		}
		return ts.POST("/api/v1/access-entries", body)
	}

	resp := grant("document_admire", "", 0)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown permission: status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	_ = resp.Body.Close()

	resp = grant("document_view", "spaceship", 1)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown object kind: status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	_ = resp.Body.Close()

	// A global grant serializes with null object fields.
	var entry struct {
		Data struct {
			Attributes jsonapi.AccessEntryAttributes `json:"attributes"`
		} `json:"data"`
	}
	resp = grant("document_view", "", 0)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("global grant: status = %d, want %d: %s", resp.StatusCode, http.StatusCreated, ts.ReadBody(resp))
	}
	ts.DecodeJSON(resp, &entry)
	if entry.Data.Attributes.Permission != "document_view" {
		t.Errorf("permission = %q, want %q", entry.Data.Attributes.Permission, "document_view")
	}
	if entry.Data.Attributes.ObjectKind != nil {
		t.Errorf("object_kind = %v for global grant, want null", *entry.Data.Attributes.ObjectKind)
	}

	var catalog struct {
		Data []struct {
			Attributes jsonapi.PermissionAttributes `json:"attributes"`
		} `json:"data"`
	}
	resp = ts.GET("/api/v1/access-entries/permissions")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("catalog: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	ts.DecodeJSON(resp, &catalog)
	names := make(map[string]bool, len(catalog.Data))
	for _, p := range catalog.Data {
		names[p.Attributes.Name] = true
	}
	for _, want := range []string{"document_view", "workflow_transition", "acl_edit"} {
		if !names[want] {
			t.Errorf("catalog missing %q", want)
		}
	}

	// The catalog itself is gated.
	resp = ts.GETAs("carol", "/api/v1/access-entries/permissions")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("catalog as carol: status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
	_ = resp.Body.Close()
}

func TestUsers_Lifecycle(t *testing.T) {
	ts := NewTestServer(t)

	body := dto.UserCreateRequest{
		Data: dto.UserCreateData{
			Type:       "user",
			Attributes: dto.UserCreateAttributes{Username: "carol"},
		},
	}

	var result struct {
		Data struct {
			ID         string                 `json:"id"`
			Attributes jsonapi.UserAttributes `json:"attributes"`
		} `json:"data"`
	}
	resp := ts.POST("/api/v1/users", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d, want %d: %s", resp.StatusCode, http.StatusCreated, ts.ReadBody(resp))
	}
	ts.DecodeJSON(resp, &result)
	if result.Data.Attributes.Username != "carol" {
		t.Errorf("username = %q, want %q", result.Data.Attributes.Username, "carol")
	}
	if !result.Data.Attributes.IsActive {
		t.Error("is_active = false for new user")
	}
	if result.Data.Attributes.IsSuperuser {
		t.Error("is_superuser = true for new user")
	}
	carolID, err := strconv.ParseInt(result.Data.ID, 10, 64)
	if err != nil {
		t.Fatalf("parse user id %q: %v", result.Data.ID, err)
	}

	resp = ts.POST("/api/v1/users", body)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	_ = resp.Body.Close()

	reserved := dto.UserCreateRequest{
		Data: dto.UserCreateData{
			Type:       "user",
			Attributes: dto.UserCreateAttributes{Username: "system"},
		},
	}
	resp = ts.POST("/api/v1/users", reserved)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("reserved username: status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	_ = resp.Body.Close()

	resp = ts.GETAs("carol", "/api/v1/users/me")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	ts.DecodeJSON(resp, &result)
	if result.Data.Attributes.Username != "carol" {
		t.Errorf("me username = %q, want %q", result.Data.Attributes.Username, "carol")
	}

	resp = ts.GETAs("", "/api/v1/users/me")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me anonymous: status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	_ = resp.Body.Close()

	// User listing needs user_view; carol has no grants.
	resp = ts.GETAs("carol", "/api/v1/users")
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("list as carol: status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
	_ = resp.Body.Close()

	var list struct {
		Data []struct {
			Attributes jsonapi.UserAttributes `json:"attributes"`
		} `json:"data"`
	}
	resp = ts.GET("/api/v1/users")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	ts.DecodeJSON(resp, &list)
	usernames := make(map[string]bool, len(list.Data))
	for _, u := range list.Data {
		usernames[u.Attributes.Username] = true
	}
	if !usernames["admin"] || !usernames["carol"] {
		t.Errorf("usernames = %v, want admin and carol", usernames)
	}

	resp = ts.DELETE(fmt.Sprintf("/api/v1/users/%d", carolID))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	_ = resp.Body.Close()

	resp = ts.GET(fmt.Sprintf("/api/v1/users/%d", carolID))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted: status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	_ = resp.Body.Close()

	// The deleted username no longer authenticates.
	resp = ts.GETAs("carol", "/api/v1/users/me")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me deleted: status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	_ = resp.Body.Close()
}
