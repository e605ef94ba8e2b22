package mockplane

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"whisk-action-client/models"
)

type storedActivation struct {
	record    *models.Activation
	createdAt time.Time
}

// store is the in-memory control plane state: actions keyed by namespace
// and name, activations keyed by ID with a bounded retention window.
type store struct {
	mu          sync.Mutex
	actions     map[string]map[string]*models.Action
	activations map[string]storedActivation
	retention   time.Duration
}

func newStore(retention time.Duration) *store {
	return &store{
		actions:     make(map[string]map[string]*models.Action),
		activations: make(map[string]storedActivation),
		retention:   retention,
	}
}

func (s *store) list(namespace string) []models.ActionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]models.ActionSummary, 0, len(s.actions[namespace]))
	for _, action := range s.actions[namespace] {
		summaries = append(summaries, models.ActionSummary{
			Namespace: action.Namespace,
			Name:      action.Name,
			Version:   action.Version,
			Publish:   action.Publish,
			Updated:   action.Updated,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries
}

func (s *store) get(namespace, name string) (*models.Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, ok := s.actions[namespace][name]
	if !ok {
		return nil, false
	}
	return cloneAction(action), true
}

// put stores an action under the path identity. The namespace and name in
// the body are ignored in favor of the path, the version is bumped on
// overwrite, and a conflict is reported when the action exists and
// overwrite was not requested.
func (s *store) put(namespace, name string, action *models.Action, overwrite bool) (*models.Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.actions[namespace][name]
	if exists && !overwrite {
		return nil, true
	}

	stored := cloneAction(action)
	stored.Namespace = namespace
	stored.Name = name
	stored.Updated = time.Now().UnixMilli()
	if exists {
		stored.Version = nextVersion(existing.Version)
	} else {
		stored.Version = "0.0.1"
	}

	if s.actions[namespace] == nil {
		s.actions[namespace] = make(map[string]*models.Action)
	}
	s.actions[namespace][name] = stored
	return cloneAction(stored), false
}

func (s *store) delete(namespace, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.actions[namespace][name]; !ok {
		return false
	}
	delete(s.actions[namespace], name)
	return true
}

func (s *store) putActivation(record *models.Activation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activations[record.ActivationID] = storedActivation{record: record, createdAt: time.Now()}
}

func (s *store) getActivation(id string) (*models.Activation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.activations[id]
	if !ok {
		return nil, false
	}
	if s.retention > 0 && time.Since(stored.createdAt) > s.retention {
		delete(s.activations, id)
		return nil, false
	}
	return stored.record, true
}

func cloneAction(action *models.Action) *models.Action {
	clone := *action
	if action.Exec != nil {
		exec := *action.Exec
		clone.Exec = &exec
	}
	if action.Limits != nil {
		limits := *action.Limits
		clone.Limits = &limits
	}
	if action.Parameters != nil {
		clone.Parameters = make(models.Parameters, len(action.Parameters))
		copy(clone.Parameters, action.Parameters)
	}
	return &clone
}

func nextVersion(version string) string {
	i := strings.LastIndex(version, ".")
	if i < 0 {
		return "0.0.1"
	}
	patch, err := strconv.Atoi(version[i+1:])
	if err != nil {
		return "0.0.1"
	}
	return fmt.Sprintf("%s.%d", version[:i], patch+1)
}
