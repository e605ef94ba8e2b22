package models

// DefaultExecKind is used when a caller does not declare a runtime kind.
const DefaultExecKind = "nodejs:default"

// Exec is the executable representation of an action. Exactly one variant
// is active per version: inline source (Code holds text) or archive (Code
// holds the base64-encoded bundle and Binary is set).
type Exec struct {
	Kind   string `json:"kind"`
	Code   string `json:"code,omitempty"`
	Main   string `json:"main,omitempty"`
	Binary bool   `json:"binary,omitempty"`
}

// Limits caps an action's resource usage on the platform.
type Limits struct {
	MemoryMB  int `json:"memory,omitempty"`
	TimeoutMs int `json:"timeout,omitempty"`
	LogsKB    int `json:"logs,omitempty"`
}

// Action represents a deployed action. Namespace is immutable once set;
// Name is the external identifier within the namespace.
type Action struct {
	Namespace  string     `json:"namespace"`
	Name       string     `json:"name"`
	Version    string     `json:"version,omitempty"`
	Exec       *Exec      `json:"exec,omitempty"`
	Parameters Parameters `json:"parameters,omitempty"`
	Limits     *Limits    `json:"limits,omitempty"`
	Publish    bool       `json:"publish"`
	Updated    int64      `json:"updated,omitempty"`
}

// ActionSummary represents an action in list view (without exec)
type ActionSummary struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
	Publish   bool   `json:"publish"`
	Updated   int64  `json:"updated,omitempty"`
}
