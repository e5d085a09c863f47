package cv

import (
	"context"
	"io"
	"time"
)

// SectionType identifies a document section.
type SectionType string

const (
	SectionPersonal       SectionType = "personal"
	SectionSummary        SectionType = "summary"
	SectionExperience     SectionType = "experience"
	SectionEducation      SectionType = "education"
	SectionSkills         SectionType = "skills"
	SectionCertifications SectionType = "certifications"
	SectionLanguages      SectionType = "languages"
	SectionVolunteer      SectionType = "volunteer"
	SectionAwards         SectionType = "awards"
	SectionPublications   SectionType = "publications"
	SectionReferences     SectionType = "references"
)

// ContentSectionTypes lists the section types stored in Document.Sections.
var ContentSectionTypes = []SectionType{
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionCertifications,
	SectionLanguages,
	SectionVolunteer,
	SectionAwards,
	SectionPublications,
	SectionReferences,
}

// Present marks an open-ended date range.
const Present = "Present"

// Document is the root CV aggregate.
type Document struct {
	ID                string               `json:"id"`
	Personal          Personal             `json:"personal"`
	Sections          []Section            `json:"sections,omitempty"`
	SectionVisibility map[SectionType]bool `json:"sectionVisibility,omitempty"`
	TemplateID        string               `json:"templateId,omitempty"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// Personal holds the always-rendered header fields.
type Personal struct {
	FullName   string `json:"fullName"`
	Title      string `json:"title,omitempty"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	LinkedIn   string `json:"linkedin,omitempty"`
	Website    string `json:"website,omitempty"`
	WorkPermit string `json:"workPermit,omitempty"`
}

// Section is a tagged variant; only the payload matching Type is meaningful.
type Section struct {
	Type           SectionType         `json:"type"`
	Summary        string              `json:"summary,omitempty"`
	Experience     []ExperienceItem    `json:"experience,omitempty"`
	Education      []EducationItem     `json:"education,omitempty"`
	Skills         []string            `json:"skills,omitempty"`
	Certifications []CertificationItem `json:"certifications,omitempty"`
	Languages      []LanguageItem      `json:"languages,omitempty"`
	Volunteer      []VolunteerItem     `json:"volunteer,omitempty"`
	Awards         []AwardItem         `json:"awards,omitempty"`
	Publications   []PublicationItem   `json:"publications,omitempty"`
	References     *References         `json:"references,omitempty"`
}

// ExperienceItem is a work history entry.
type ExperienceItem struct {
	Company  string   `json:"company"`
	Role     string   `json:"role"`
	Location string   `json:"location,omitempty"`
	Start    string   `json:"start"`
	End      string   `json:"end,omitempty"`
	Bullets  []string `json:"bullets,omitempty"`
}

// EducationItem is an education entry.
type EducationItem struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end,omitempty"`
	Grade       string `json:"grade,omitempty"`
}

// CertificationItem is a certification entry.
type CertificationItem struct {
	Name         string `json:"name"`
	Issuer       string `json:"issuer"`
	IssueDate    string `json:"issueDate"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
	CredentialID string `json:"credentialId,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Proficiency levels accepted for languages.
const (
	ProficiencyNative = "native"
	ProficiencyC2     = "C2"
	ProficiencyC1     = "C1"
	ProficiencyB2     = "B2"
	ProficiencyB1     = "B1"
	ProficiencyA2     = "A2"
	ProficiencyA1     = "A1"
)

// LanguageItem is a spoken language entry.
type LanguageItem struct {
	Language    string `json:"language"`
	Proficiency string `json:"proficiency"`
}

// VolunteerItem is a volunteering entry.
type VolunteerItem struct {
	Organization string `json:"organization"`
	Role         string `json:"role"`
	Start        string `json:"start"`
	End          string `json:"end,omitempty"`
	Description  string `json:"description,omitempty"`
}

// AwardItem is an award entry.
type AwardItem struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer,omitempty"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

// PublicationItem is a publication entry.
type PublicationItem struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Date      string `json:"date"`
	URL       string `json:"url,omitempty"`
}

// ReferencesMode selects how references are presented.
type ReferencesMode string

const (
	ReferencesOnRequest ReferencesMode = "on-request"
	ReferencesDetailed  ReferencesMode = "detailed"
)

// References holds the references section payload.
type References struct {
	Mode     ReferencesMode     `json:"mode"`
	Contacts []ReferenceContact `json:"contacts,omitempty"`
}

// ReferenceContact is a referee.
type ReferenceContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Company      string `json:"company,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// Persistence stores and loads documents. Save must be idempotent.
type Persistence interface {
	Save(ctx context.Context, doc Document) error
	Load(ctx context.Context, id string) (Document, error)
}

// ProgressFunc receives export progress (0-100) and the current stage.
type ProgressFunc func(percent int, stage string)

// PDFRequest describes a PDF render.
type PDFRequest struct {
	Document   Document
	TemplateID string
}

// PDFRenderer renders a document to PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, req PDFRequest, w io.Writer, progress ProgressFunc) error
}

// ArtifactMeta describes a stored PDF.
type ArtifactMeta struct {
	ContentType string    `json:"content_type"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	DocumentID  string    `json:"document_id"`
	TemplateID  string    `json:"template_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ArtifactRef references a stored PDF.
type ArtifactRef struct {
	Key  string
	Meta ArtifactMeta
}

// ArtifactStore stores exported PDFs.
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error)
	Delete(ctx context.Context, key string) error
}

// ExportState is the lifecycle state of a recorded export.
type ExportState string

const (
	ExportStateRunning   ExportState = "running"
	ExportStateSucceeded ExportState = "succeeded"
	ExportStateFailed    ExportState = "failed"
)

// ExportRecord is an export history entry.
type ExportRecord struct {
	ID          string      `json:"id"`
	DocumentID  string      `json:"document_id"`
	TemplateID  string      `json:"template_id"`
	State       ExportState `json:"state"`
	Bytes       int64       `json:"bytes"`
	ArtifactKey string      `json:"artifact_key,omitempty"`
	Error       string      `json:"error,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt time.Time   `json:"completed_at,omitempty"`
}

// ExportTracker records export history.
type ExportTracker interface {
	Start(ctx context.Context, rec ExportRecord) (string, error)
	Complete(ctx context.Context, id string, bytes int64, artifactKey string) error
	Fail(ctx context.Context, id string, err error) error
	List(ctx context.Context, documentID string) ([]ExportRecord, error)
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
