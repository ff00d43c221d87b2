package manifest

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

const (
	// DefaultPackageType is used when a profile does not declare sw_package_type.
	DefaultPackageType = "standard"
	// DefaultChangeLogName is the change log display name when none is stored.
	DefaultChangeLogName = "Gerrit log"
	// ArtifactKind is the fixed kind of every manifest artifact.
	ArtifactKind = "VBF file"
	// TargetPlatform is the fixed platform of every manifest artifact.
	TargetPlatform = "SUM1"
)

// BuildtimeConfiguration is a configuration parameter and its values.
type BuildtimeConfiguration struct {
	CP  string   `json:"cp"`
	CPV []string `json:"cpv"`
}

// DefaultBuildtimeConfigurations returns the literal configuration list attached to artifacts.
func DefaultBuildtimeConfigurations() []BuildtimeConfiguration {
	return []BuildtimeConfiguration{{CP: "VCTN", CPV: []string{"PRR"}}}
}

// AdditionalInformation is a document attached to a source reference.
type AdditionalInformation struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Kind        string `json:"kind"`
	ContentType string `json:"content_type"`
	// Location holds a project id in profiles and a resolved URL in manifests.
	Location string `json:"location"`
	// Extra keeps stored fields without a typed counterpart, such as version.
	Extra Document `json:"-"`
}

// MarshalJSON writes the typed fields followed by the untyped ones.
func (ai AdditionalInformation) MarshalJSON() ([]byte, error) {
	type plain AdditionalInformation

	return marshalWithExtra(plain(ai), ai.Extra)
}

// ChangeLog points at the change history of a source reference.
type ChangeLog struct {
	Filenamn string `json:"filenamn"`
	Version  string `json:"version"`
	Location string `json:"location"`
}

// SourceReference is one source repository contributing to a package.
type SourceReference struct {
	Idx     int    `json:"idx"`
	Name    string `json:"name"`
	Version string `json:"version"`
	// Location holds a project id in profiles and a resolved URL in manifests.
	Location               string                  `json:"location"`
	Components             []any                   `json:"components"`
	AdditionalInformation  []AdditionalInformation `json:"additional_information"`
	RegulatoryRequirements any                     `json:"regulatory_requirements,omitempty"`
	ChangeLog              ChangeLog               `json:"change_log"`
	// Extra keeps stored fields without a typed counterpart.
	Extra Document `json:"-"`
}

// MarshalJSON writes the typed fields followed by the untyped ones.
func (ref SourceReference) MarshalJSON() ([]byte, error) {
	type plain SourceReference

	return marshalWithExtra(plain(ref), ref.Extra)
}

var (
	sourceReferenceFields = []string{
		"idx", "name", "version", "location", "components",
		"additional_information", "regulatory_requirements", "change_log",
	}
	additionalInformationFields = []string{"title", "category", "kind", "content_type", "location"}
)

// Artifact is one binary delivered with a package.
type Artifact struct {
	Idx                     int                      `json:"idx"`
	Name                    string                   `json:"name"`
	Kind                    string                   `json:"kind"`
	Version                 string                   `json:"version"`
	Location                string                   `json:"location"`
	SHA256                  string                   `json:"sha256"`
	TargetPlatform          string                   `json:"target_platform"`
	BuildtimeConfigurations []BuildtimeConfiguration `json:"buildtime_configurations"`
	SourceReferencesIdx     []int                    `json:"source_references_idx"`
}

// Profile is the typed view of a stored profile document.
type Profile struct {
	// ID keeps the stored identifier value (number or string) unchanged.
	ID                   any
	PackageType          string
	GenericProductModule Document
	SourceReferences     []SourceReference
	SWAD                 []any
	SWDD                 []any
	Artifacts            []Artifact
}

// Manifest is the assembled release document.
type Manifest struct {
	SWPackageID          any               `json:"sw_package_id"`
	SWPackageVersion     string            `json:"sw_package_version"`
	SWPackageType        string            `json:"sw_package_type"`
	GenericProductModule Document          `json:"generic_product_module"`
	SourceReferences     []SourceReference `json:"source_references"`
	SWAD                 []any             `json:"swad"`
	SWDD                 []any             `json:"swdd"`
	Artifacts            []Artifact        `json:"artifacts"`
	SWVersion            string            `json:"sw_version"`
}

// Document renders the manifest as a generic document tree.
func (m *Manifest) Document() (Document, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return doc, nil
}

// ParseProfile reads the typed view of a profile document. Unknown fields
// are ignored and fields of the wrong shape read as empty values.
func ParseProfile(doc Document) *Profile {
	profile := &Profile{
		ID:                   doc[IDKey],
		PackageType:          doc.String("sw_package_type"),
		GenericProductModule: doc.Map("generic_product_module"),
		SWAD:                 doc.List("swad"),
		SWDD:                 doc.List("swdd"),
	}

	for _, item := range doc.List("source_references") {
		if ref := asDocument(item); ref != nil {
			profile.SourceReferences = append(profile.SourceReferences, parseSourceReference(ref))
		}
	}

	for _, item := range doc.List("artifacts") {
		if artifact := asDocument(item); artifact != nil {
			profile.Artifacts = append(profile.Artifacts, parseArtifact(artifact))
		}
	}

	return profile
}

func parseSourceReference(doc Document) SourceReference {
	ref := SourceReference{
		Name:                   doc.String("name"),
		Version:                doc.String("version"),
		Location:               doc.String("location"),
		Components:             doc.List("components"),
		RegulatoryRequirements: doc["regulatory_requirements"],
		Extra:                  extraFields(doc, sourceReferenceFields),
	}

	if idx := intList([]any{doc["idx"]}); len(idx) == 1 {
		ref.Idx = idx[0]
	}

	for _, item := range doc.List("additional_information") {
		ai := asDocument(item)
		if ai == nil {
			continue
		}

		ref.AdditionalInformation = append(ref.AdditionalInformation, AdditionalInformation{
			Title:       ai.String("title"),
			Category:    ai.String("category"),
			Kind:        ai.String("kind"),
			ContentType: ai.String("content_type"),
			Location:    ai.String("location"),
			Extra:       extraFields(ai, additionalInformationFields),
		})
	}

	if cl := doc.Map("change_log"); cl != nil {
		ref.ChangeLog = ChangeLog{
			// Older profiles spell the display name "filename".
			Filenamn: FirstNonEmpty(cl.String("filenamn"), cl.String("filename")),
			Version:  cl.String("version"),
			Location: cl.String("location"),
		}
	}

	return ref
}

func parseArtifact(doc Document) Artifact {
	return Artifact{
		Name:                strings.TrimSpace(doc.String("name")),
		Version:             doc.String("version"),
		SourceReferencesIdx: intList(doc.List("source_references_idx")),
	}
}

// extraFields copies the fields of doc that are not listed in known.
func extraFields(doc Document, known []string) Document {
	var extra Document

	for key, value := range doc {
		if slices.Contains(known, key) {
			continue
		}

		if extra == nil {
			extra = Document{}
		}

		extra[key] = cloneNode(value)
	}

	return extra
}

// marshalWithExtra encodes v and adds the extra fields it does not already carry.
func marshalWithExtra(v any, extra Document) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var merged map[string]any
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}

	for key, value := range extra {
		if _, ok := merged[key]; !ok {
			merged[key] = value
		}
	}

	return json.Marshal(merged)
}
