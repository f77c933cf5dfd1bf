package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/slf/config"
	"p9e.in/slf/middleware"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
)

// useGCS reports whether uploads go to Google Cloud Storage. Cloud Run
// sets K_SERVICE; GOOGLE_APPLICATION_CREDENTIALS covers everything else.
func useGCS() bool {
	return os.Getenv("USE_GCS") == "true" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		os.Getenv("K_SERVICE") != ""
}

// documentCategories is the closed set accepted on upload.
var documentCategories = map[string]bool{
	"permit":      true,
	"drawing":     true,
	"certificate": true,
	"other":       true,
}

// UploadProjectDocument stores a project document and records its
// metadata. The binary goes to GCS in production and local disk in
// development.
// POST /api/v1/projects/{id}/documents (multipart: file, category)
func UploadProjectDocument(w http.ResponseWriter, r *http.Request) {
	userID := middleware.PrincipalID(r)
	if userID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	projectID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var project models.Project
	if err := config.DB.First(&project, "id = ?", projectID).Error; err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	// Parse the multipart form (max 50MB)
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	category := r.FormValue("category")
	if category == "" {
		category = "other"
	}
	if !documentCategories[category] {
		http.Error(w, "unknown document category", http.StatusBadRequest)
		return
	}

	// Collision-safe object name.
	timestamp := time.Now().Format("20060102-150405")
	ext := filepath.Ext(header.Filename)
	objectName := fmt.Sprintf("projects/%s/%s-%s%s", projectID, timestamp, uuid.New().String()[:8], ext)

	var storagePath, url string
	var size int64
	if useGCS() {
		storagePath, url, size, err = saveToGCS(r.Context(), objectName, file, header.Header.Get("Content-Type"))
	} else {
		storagePath, url, size, err = saveToLocalDisk(objectName, file)
	}
	if err != nil {
		log.Printf("❌ Document upload failed for project %s: %v", projectID, err)
		http.Error(w, "failed to store file", http.StatusInternalServerError)
		return
	}

	doc := models.ProjectDocument{
		ProjectID:   projectID,
		UploaderID:  userID,
		FileName:    header.Filename,
		StoragePath: storagePath,
		URL:         url,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   size,
		Category:    category,
	}
	if err := config.DB.Create(&doc).Error; err != nil {
		http.Error(w, "failed to record document", http.StatusInternalServerError)
		return
	}

	log.Printf("✅ Uploaded document %s for project %s", doc.FileName, project.Code)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(doc)
}

// ListProjectDocuments returns the document metadata rows of a project.
// GET /api/v1/projects/{id}/documents
func ListProjectDocuments(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := workflow.CanonicalRole(user.Role)

	projectID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	// Documents follow the visibility of their project.
	var project models.Project
	if err := config.DB.
		Scopes(workflow.ProjectScope(role, user.ID, user.ClientID)).
		First(&project, "projects.id = ?", projectID).Error; err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	q := config.DB.Where("project_id = ?", projectID).Order("created_at DESC")
	if category := r.URL.Query().Get("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var docs []models.ProjectDocument
	if err := q.Find(&docs).Error; err != nil {
		http.Error(w, "failed to fetch documents", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

// DeleteProjectDocument removes a document metadata row. The stored
// binary is left in place for audit; storage lifecycle rules handle
// cleanup.
// DELETE /api/v1/documents/{id}
func DeleteProjectDocument(w http.ResponseWriter, r *http.Request) {
	docID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid document id", http.StatusBadRequest)
		return
	}

	var doc models.ProjectDocument
	if err := config.DB.First(&doc, "id = ?", docID).Error; err != nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}

	if err := config.DB.Delete(&doc).Error; err != nil {
		http.Error(w, "failed to delete document", http.StatusInternalServerError)
		return
	}

	log.Printf("⚠️ Deleted document record %s (%s)", doc.ID, doc.FileName)
	json.NewEncoder(w).Encode(map[string]string{"message": "document deleted"})
}

// saveToLocalDisk writes the upload under ./uploads and returns a
// relative URL served by the static file route.
func saveToLocalDisk(objectName string, src io.Reader) (storagePath, url string, size int64, err error) {
	path := filepath.Join("./uploads", objectName)
	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", "", 0, err
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", "", 0, err
	}
	defer dst.Close()

	size, err = io.Copy(dst, src)
	if err != nil {
		return "", "", 0, err
	}

	return path, "/uploads/" + objectName, size, nil
}
