package e2e_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pagekeep/doclink/infrastructure/api/jsonapi"
	"github.com/pagekeep/doclink/infrastructure/api/v1/dto"
)

func TestDocumentTypes_CRUD(t *testing.T) {
	ts := NewTestServer(t)

	typeID := ts.CreateDocumentType("Contracts")
	typePath := fmt.Sprintf("/api/v1/document-types/%d", typeID)

	var result struct {
		Data struct {
			Type       string                         `json:"type"`
			Attributes jsonapi.DocumentTypeAttributes `json:"attributes"`
		} `json:"data"`
	}
	resp := ts.GET(typePath)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	ts.DecodeJSON(resp, &result)
	if result.Data.Type != "document-type" {
		t.Errorf("type = %q, want %q", result.Data.Type, "document-type")
	}
	if result.Data.Attributes.Label != "Contracts" {
		t.Errorf("label = %q, want %q", result.Data.Attributes.Label, "Contracts")
	}

	// Labels are unique.
	duplicate := dto.DocumentTypeRequest{
		Data: dto.DocumentTypeData{
			Type:       "document-type",
			Attributes: dto.DocumentTypeAttributes{Label: "Contracts"},
		},
	}
	resp = ts.POST("/api/v1/document-types", duplicate)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	_ = resp.Body.Close()

	empty := dto.DocumentTypeRequest{
		Data: dto.DocumentTypeData{
			Type:       "document-type",
			Attributes: dto.DocumentTypeAttributes{Label: "   "},
		},
	}
	resp = ts.POST("/api/v1/document-types", empty)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("blank label: status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	_ = resp.Body.Close()

	rename := dto.DocumentTypeRequest{
		Data: dto.DocumentTypeData{
			Type:       "document-type",
			Attributes: dto.DocumentTypeAttributes{Label: "Agreements"},
		},
	}
	resp = ts.PUT(typePath, rename)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename: status = %d, want %d: %s", resp.StatusCode, http.StatusOK, ts.ReadBody(resp))
	}
	ts.DecodeJSON(resp, &result)
	if result.Data.Attributes.Label != "Agreements" {
		t.Errorf("label = %q, want %q", result.Data.Attributes.Label, "Agreements")
	}

	otherID := ts.CreateDocumentType("Invoices")
	resp = ts.PUT(fmt.Sprintf("/api/v1/document-types/%d", otherID), rename)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("rename to taken label: status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	_ = resp.Body.Close()

	resp = ts.DELETE(typePath)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	_ = resp.Body.Close()

	resp = ts.GET(typePath)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted: status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	_ = resp.Body.Close()
}

func TestDocumentTypes_DeleteInUse(t *testing.T) {
	ts := NewTestServer(t)

	typeID := ts.CreateDocumentType("Contracts")
	docID := ts.CreateDocument(typeID, "NDA")
	typePath := fmt.Sprintf("/api/v1/document-types/%d", typeID)

	resp := ts.DELETE(typePath)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("delete in use: status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	_ = resp.Body.Close()

	// Emptying the type makes it deletable.
	ts.expectStatus(ts.POST(fmt.Sprintf("/api/v1/documents/%d/trash", docID), nil), http.StatusOK)
	ts.expectStatus(ts.DELETE(fmt.Sprintf("/api/v1/documents/%d", docID)), http.StatusNoContent)

	resp = ts.DELETE(typePath)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete empty: status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	_ = resp.Body.Close()
}

func TestMetadataTypes_CRUD(t *testing.T) {
	ts := NewTestServer(t)

	typeID := ts.CreateMetadataType("customer_id", "Customer ID")
	typePath := fmt.Sprintf("/api/v1/metadata-types/%d", typeID)

	var result struct {
		Data struct {
			Type       string                         `json:"type"`
			Attributes jsonapi.MetadataTypeAttributes `json:"attributes"`
		} `json:"data"`
	}
	resp := ts.GET(typePath)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	ts.DecodeJSON(resp, &result)
	if result.Data.Type != "metadata-type" {
		t.Errorf("type = %q, want %q", result.Data.Type, "metadata-type")
	}
	if result.Data.Attributes.Name != "customer_id" {
		t.Errorf("name = %q, want %q", result.Data.Attributes.Name, "customer_id")
	}
	if result.Data.Attributes.Label != "Customer ID" {
		t.Errorf("label = %q, want %q", result.Data.Attributes.Label, "Customer ID")
	}

	// Names are unique.
	duplicate := dto.MetadataTypeCreateRequest{
		Data: dto.MetadataTypeCreateData{
			Type:       "metadata-type",
			Attributes: dto.MetadataTypeCreateAttributes{Name: "customer_id", Label: "Another"},
		},
	}
	resp = ts.POST("/api/v1/metadata-types", duplicate)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate: status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	_ = resp.Body.Close()

	// Names are single identifiers; conditions reference them with dots.
	invalid := dto.MetadataTypeCreateRequest{
		Data: dto.MetadataTypeCreateData{
			Type:       "metadata-type",
			Attributes: dto.MetadataTypeCreateAttributes{Name: "customer.id"},
		},
	}
	resp = ts.POST("/api/v1/metadata-types", invalid)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("dotted name: status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	_ = resp.Body.Close()

	// An omitted label defaults to the name.
	unlabeled := dto.MetadataTypeCreateRequest{
		Data: dto.MetadataTypeCreateData{
			Type:       "metadata-type",
			Attributes: dto.MetadataTypeCreateAttributes{Name: "region"},
		},
	}
	resp = ts.POST("/api/v1/metadata-types", unlabeled)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unlabeled create: status = %d, want %d: %s", resp.StatusCode, http.StatusCreated, ts.ReadBody(resp))
	}
	ts.DecodeJSON(resp, &result)
	if result.Data.Attributes.Label != "region" {
		t.Errorf("label = %q, want %q", result.Data.Attributes.Label, "region")
	}

	rename := dto.MetadataTypeUpdateRequest{
		Data: dto.MetadataTypeUpdateData{
			Type:       "metadata-type",
			Attributes: dto.MetadataTypeUpdateAttributes{Label: "Customer number"},
		},
	}
	resp = ts.PUT(typePath, rename)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename: status = %d, want %d: %s", resp.StatusCode, http.StatusOK, ts.ReadBody(resp))
	}
	ts.DecodeJSON(resp, &result)
	if result.Data.Attributes.Label != "Customer number" {
		t.Errorf("label = %q, want %q", result.Data.Attributes.Label, "Customer number")
	}
	if result.Data.Attributes.Name != "customer_id" {
		t.Errorf("name changed on rename: %q", result.Data.Attributes.Name)
	}

	resp = ts.DELETE(typePath)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	_ = resp.Body.Close()

	resp = ts.GET(typePath)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted: status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	_ = resp.Body.Close()
}

func TestMetadataTypes_DeleteRemovesValues(t *testing.T) {
	ts := NewTestServer(t)

	docTypeID := ts.CreateDocumentType("Contracts")
	docID := ts.CreateDocument(docTypeID, "NDA")
	metaTypeID := ts.CreateMetadataType("customer_id", "Customer ID")
	ts.SetMetadata(docID, metaTypeID, "ACME-001")

	ts.expectStatus(ts.DELETE(fmt.Sprintf("/api/v1/metadata-types/%d", metaTypeID)), http.StatusNoContent)

	var list struct {
		Data []jsonapi.Resource `json:"data"`
	}
	resp := ts.GET(fmt.Sprintf("/api/v1/documents/%d/metadata", docID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list metadata: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	ts.DecodeJSON(resp, &list)
	if len(list.Data) != 0 {
		t.Errorf("len(metadata) = %d after type delete, want 0", len(list.Data))
	}
}
