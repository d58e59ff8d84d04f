package snyk

import (
	"encoding/json"
	"time"
)

// Group is the account group an organization may belong to.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Organization represents a Snyk organization, the root of the resource
// hierarchy. Organizations own projects, members, integrations and
// org-wide collections such as licenses and dependencies.
type Organization struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug,omitempty"`
	URL   string `json:"url,omitempty"`
	Group *Group `json:"group,omitempty"`

	client *Client
}

func (o *Organization) resourceID() string { return o.ID }

// Member is a user belonging to an organization.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (m *Member) resourceID() string { return m.ID }

// IssueCounts holds per-severity issue totals for a project.
type IssueCounts struct {
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// Tag is a key-value pair scoped to a project.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Project represents a monitored Snyk project. Projects are returned with a
// non-nil Organization back-reference by every service that produces them.
//
// The REST API delivers projects in a JSON-API envelope
// ({id, type, attributes, meta}); legacy v1 payloads are flat. UnmarshalJSON
// accepts both and flattens the envelope into the record. Tags arriving with
// the payload are cached on the project so the common read path needs no
// second round trip; see TagService.
type Project struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Created             time.Time   `json:"created,omitzero"`
	Origin              string      `json:"origin"`
	Type                string      `json:"type"`
	ReadOnly            bool        `json:"readOnly"`
	Status              string      `json:"status,omitempty"`
	TestFrequency       string      `json:"testFrequency,omitempty"`
	TotalDependencies   int         `json:"totalDependencies"`
	LastTestedDate      time.Time   `json:"lastTestedDate,omitzero"`
	IssueCounts         IssueCounts `json:"issueCountsBySeverity"`
	ImageID             string      `json:"imageId,omitempty"`
	ImageTag            string      `json:"imageTag,omitempty"`
	TargetFile          string      `json:"targetFile,omitempty"`
	TargetReference     string      `json:"targetReference,omitempty"`
	Environment         []string    `json:"environment,omitempty"`
	BusinessCriticality []string    `json:"businessCriticality,omitempty"`
	Lifecycle           []string    `json:"lifecycle,omitempty"`

	// Organization is a non-owning back-reference to the organization the
	// project was loaded through. Never nil on a project returned by a
	// service.
	Organization *Organization `json:"-"`

	tags []Tag
}

func (p *Project) resourceID() string { return p.ID }

// projectFlat mirrors the legacy v1 project payload.
type projectFlat struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Created             time.Time   `json:"created"`
	Origin              string      `json:"origin"`
	Type                string      `json:"type"`
	ReadOnly            bool        `json:"readOnly"`
	TestFrequency       string      `json:"testFrequency"`
	TotalDependencies   int         `json:"totalDependencies"`
	LastTestedDate      time.Time   `json:"lastTestedDate"`
	IssueCounts         IssueCounts `json:"issueCountsBySeverity"`
	ImageID             string      `json:"imageId"`
	ImageTag            string      `json:"imageTag"`
	Environment         []string    `json:"environment"`
	BusinessCriticality []string    `json:"businessCriticality"`
	Lifecycle           []string    `json:"lifecycle"`
	Tags                []Tag       `json:"tags"`
}

// projectEnvelope mirrors the REST (JSON-API) project payload.
type projectEnvelope struct {
	ID         string `json:"id"`
	Attributes struct {
		Name                string    `json:"name"`
		Created             time.Time `json:"created"`
		Origin              string    `json:"origin"`
		Type                string    `json:"type"`
		ReadOnly            bool      `json:"read_only"`
		Status              string    `json:"status"`
		TestFrequency       string    `json:"test_frequency"`
		TargetFile          string    `json:"target_file"`
		TargetReference     string    `json:"target_reference"`
		Environment         []string  `json:"environment"`
		BusinessCriticality []string  `json:"business_criticality"`
		Lifecycle           []string  `json:"lifecycle"`
		Tags                []Tag     `json:"tags"`
	} `json:"attributes"`
	Meta struct {
		LatestIssueCounts     *IssueCounts `json:"latest_issue_counts"`
		LatestDependencyTotal *struct {
			Total int `json:"total"`
		} `json:"latest_dependency_total"`
	} `json:"meta"`
}

// UnmarshalJSON decodes either payload generation into the flat record.
// Unknown fields are ignored for forward compatibility; absent optional
// fields keep their zero values.
func (p *Project) UnmarshalJSON(data []byte) error {
	var probe struct {
		Attributes json.RawMessage `json:"attributes"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if probe.Attributes == nil {
		var flat projectFlat
		if err := json.Unmarshal(data, &flat); err != nil {
			return err
		}
		*p = Project{
			ID:                  flat.ID,
			Name:                flat.Name,
			Created:             flat.Created,
			Origin:              flat.Origin,
			Type:                flat.Type,
			ReadOnly:            flat.ReadOnly,
			TestFrequency:       flat.TestFrequency,
			TotalDependencies:   flat.TotalDependencies,
			LastTestedDate:      flat.LastTestedDate,
			IssueCounts:         flat.IssueCounts,
			ImageID:             flat.ImageID,
			ImageTag:            flat.ImageTag,
			Environment:         flat.Environment,
			BusinessCriticality: flat.BusinessCriticality,
			Lifecycle:           flat.Lifecycle,
			tags:                flat.Tags,
		}
		return nil
	}

	var env projectEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*p = Project{
		ID:                  env.ID,
		Name:                env.Attributes.Name,
		Created:             env.Attributes.Created,
		Origin:              env.Attributes.Origin,
		Type:                env.Attributes.Type,
		ReadOnly:            env.Attributes.ReadOnly,
		Status:              env.Attributes.Status,
		TestFrequency:       env.Attributes.TestFrequency,
		TargetFile:          env.Attributes.TargetFile,
		TargetReference:     env.Attributes.TargetReference,
		Environment:         env.Attributes.Environment,
		BusinessCriticality: env.Attributes.BusinessCriticality,
		Lifecycle:           env.Attributes.Lifecycle,
		tags:                env.Attributes.Tags,
	}
	if env.Meta.LatestIssueCounts != nil {
		p.IssueCounts = *env.Meta.LatestIssueCounts
	}
	if env.Meta.LatestDependencyTotal != nil {
		p.TotalDependencies = env.Meta.LatestDependencyTotal.Total
	}
	return nil
}

// DependencyLicense is a license attached to a dependency record.
type DependencyLicense struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	License string `json:"license"`
}

// DependencyProject identifies a project a dependency occurs in.
type DependencyProject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Dependency is one package in use across an organization or project.
type Dependency struct {
	ID                         string              `json:"id"`
	Name                       string              `json:"name"`
	Version                    string              `json:"version"`
	Type                       string              `json:"type"`
	LatestVersion              string              `json:"latestVersion,omitempty"`
	LatestVersionPublishedDate string              `json:"latestVersionPublishedDate,omitempty"`
	FirstPublishedDate         string              `json:"firstPublishedDate,omitempty"`
	IsDeprecated               bool                `json:"isDeprecated"`
	DeprecatedVersions         []string            `json:"deprecatedVersions,omitempty"`
	Licenses                   []DependencyLicense `json:"licenses,omitempty"`
	Projects                   []DependencyProject `json:"projects,omitempty"`
	Copyright                  []string            `json:"copyright,omitempty"`
}

func (d *Dependency) resourceID() string { return d.ID }

// LicenseDependency identifies a dependency carrying a given license.
type LicenseDependency struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Version        string `json:"version"`
	PackageManager string `json:"packageManager"`
}

// LicenseProject identifies a project affected by a given license.
type LicenseProject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// License is a license in use across an organization or project.
type License struct {
	ID           string              `json:"id"`
	Severity     string              `json:"severity,omitempty"`
	Instructions string              `json:"instructions,omitempty"`
	Dependencies []LicenseDependency `json:"dependencies,omitempty"`
	Projects     []LicenseProject    `json:"projects,omitempty"`
}

func (l *License) resourceID() string { return l.ID }

// Integration is an SCM or container registry integration configured for an
// organization. The upstream endpoint returns a name-to-id mapping which is
// decoded into these records.
type Integration struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Organization is a non-owning back-reference to the organization the
	// integration was loaded through. Never nil on an integration returned
	// by a service.
	Organization *Organization `json:"-"`
}

func (i *Integration) resourceID() string { return i.ID }

// Vulnerability is a single vulnerability issue within an issue set.
//
// The upstream payload names the introduction path "from"; it maps to
// FromPackages here and re-encodes under the original wire name.
type Vulnerability struct {
	ID              string          `json:"id"`
	URL             string          `json:"url"`
	Title           string          `json:"title"`
	Type            string          `json:"type,omitempty"`
	Description     string          `json:"description"`
	FromPackages    []string        `json:"from"`
	Package         string          `json:"package"`
	Version         string          `json:"version"`
	Severity        string          `json:"severity"`
	Language        string          `json:"language"`
	PackageManager  string          `json:"packageManager"`
	Semver          json.RawMessage `json:"semver,omitempty"`
	PublicationTime string          `json:"publicationTime,omitempty"`
	DisclosureTime  string          `json:"disclosureTime,omitempty"`
	IsUpgradable    bool            `json:"isUpgradable"`
	IsPatchable     bool            `json:"isPatchable"`
	IsPatched       bool            `json:"isPatched"`
	Identifiers     json.RawMessage `json:"identifiers,omitempty"`
	Credit          []string        `json:"credit,omitempty"`
	CVSSv3          string          `json:"CVSSv3,omitempty"`
	CVSSScore       *float64        `json:"cvssScore,omitempty"`
	UpgradePath     []string        `json:"upgradePath,omitempty"`
}

// LicenseIssue is a license problem reported within an issue set.
type LicenseIssue struct {
	ID             string   `json:"id"`
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	FromPackages   []string `json:"from"`
	Package        string   `json:"package"`
	Version        string   `json:"version"`
	Severity       string   `json:"severity"`
	Language       string   `json:"language,omitempty"`
	PackageManager string   `json:"packageManager,omitempty"`
	IsIgnored      bool     `json:"isIgnored"`
}

// Issues groups the two issue categories of an issue set.
type Issues struct {
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	Licenses        []LicenseIssue  `json:"licenses"`
}

// IssueSet is a complete snapshot of a project's issues at fetch time.
// It is never paginated: each fetch is a full-filter replace.
type IssueSet struct {
	OK              bool   `json:"ok"`
	PackageManager  string `json:"packageManager"`
	DependencyCount int    `json:"dependencyCount"`
	Issues          Issues `json:"issues"`
}

// AggregatedIssue is one entry from the aggregated issues endpoint.
type AggregatedIssue struct {
	ID            string          `json:"id"`
	IssueType     string          `json:"issueType"`
	PkgName       string          `json:"pkgName"`
	PkgVersions   []string        `json:"pkgVersions"`
	IssueData     json.RawMessage `json:"issueData,omitempty"`
	IsPatched     bool            `json:"isPatched"`
	IsIgnored     bool            `json:"isIgnored"`
	PriorityScore int             `json:"priorityScore"`
}

// AggregatedIssueSet is the snapshot returned by the aggregated issues
// endpoint.
type AggregatedIssueSet struct {
	Issues []AggregatedIssue `json:"issues"`
}

// PkgManager names the package manager of a dependency graph.
type PkgManager struct {
	Name string `json:"name"`
}

// PkgInfo carries the coordinates of a package.
type PkgInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Pkg is one package vertex of a dependency graph.
type Pkg struct {
	ID   string  `json:"id"`
	Info PkgInfo `json:"info"`
}

// NodeRef points at a graph node by id.
type NodeRef struct {
	NodeID string `json:"nodeId"`
}

// GraphNode is one resolution node of a dependency graph.
type GraphNode struct {
	NodeID string    `json:"nodeId"`
	PkgID  string    `json:"pkgId"`
	Deps   []NodeRef `json:"deps"`
}

// Graph is the resolved dependency structure of a dependency graph.
type Graph struct {
	RootNodeID string      `json:"rootNodeId"`
	Nodes      []GraphNode `json:"nodes"`
}

// DependencyGraph is the full dependency graph of a project.
type DependencyGraph struct {
	SchemaVersion string     `json:"schemaVersion"`
	PkgManager    PkgManager `json:"pkgManager"`
	Pkgs          []Pkg      `json:"pkgs"`
	Graph         Graph      `json:"graph"`
}

// IssuePaths lists the dependency chains through which one issue enters a
// project. Each path runs from a direct dependency down to the vulnerable
// package.
type IssuePaths struct {
	SnapshotID string      `json:"snapshotId"`
	Paths      [][]PkgInfo `json:"paths"`
	Total      int         `json:"total"`
}

// Target is an import source a project was created from, such as a
// repository, a container image or a CLI upload. Targets are delivered in a
// JSON-API envelope; UnmarshalJSON flattens it into the record.
type Target struct {
	ID          string
	DisplayName string
	Origin      string
	RemoteURL   string
	IsPrivate   bool

	// Organization is a non-owning back-reference to the organization the
	// target was loaded through. Never nil on a target returned by a
	// service.
	Organization *Organization `json:"-"`
}

func (t *Target) resourceID() string { return t.ID }

// UnmarshalJSON decodes the JSON-API envelope into the flat record.
func (t *Target) UnmarshalJSON(data []byte) error {
	var env struct {
		ID         string `json:"id"`
		Attributes struct {
			DisplayName string `json:"displayName"`
			Origin      string `json:"origin"`
			RemoteURL   string `json:"remoteUrl"`
			IsPrivate   bool   `json:"isPrivate"`
		} `json:"attributes"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*t = Target{
		ID:          env.ID,
		DisplayName: env.Attributes.DisplayName,
		Origin:      env.Attributes.Origin,
		RemoteURL:   env.Attributes.RemoteURL,
		IsPrivate:   env.Attributes.IsPrivate,
	}
	return nil
}
