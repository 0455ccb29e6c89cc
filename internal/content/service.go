package content

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lop-hoc/lophoc-server/internal/tree"
)

// ErrValidation marks a request rejected before any store call.
var ErrValidation = errors.New("validation failed")

// ErrNodeNotFound is returned when a referenced node or resource is absent.
var ErrNodeNotFound = errors.New("not found")

// Service is the single writer for the course aggregate. Every mutation is a
// read-modify-write of the whole document; concurrent writers race at
// whole-aggregate granularity and the last one wins.
type Service struct {
	store Store
	seed  AppData
}

// NewService creates the sync service. The embedded seed is decoded once so
// a broken seed fails startup instead of the first degraded read.
func NewService(store Store) (*Service, error) {
	seed, err := Seed()
	if err != nil {
		return nil, err
	}
	return &Service{store: store, seed: seed}, nil
}

// Load fetches the aggregate, falling back to the built-in seed when the row
// is absent or the read fails. Fallback is logged, not surfaced.
func (s *Service) Load(ctx context.Context) AppData {
	data, err := s.store.LoadAppData(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("loading course data failed, serving seed", "error", err)
		}
		return s.seed.clone()
	}
	return data
}

// Save persists the full aggregate.
func (s *Service) Save(ctx context.Context, data AppData) error {
	return s.store.SaveAppData(ctx, data)
}

// NodeDraft is a not-yet-committed folder or lesson. Validation depends on
// the variant: lessons need a content URL, folders must not carry one.
type NodeDraft struct {
	Title    string        `json:"title"`
	Type     tree.NodeType `json:"type"`
	URL      string        `json:"url"`
	ImageURL string        `json:"imageUrl"`
	ParentID string        `json:"parentId"`
}

// Validate checks the draft before it becomes a committed node.
func (d NodeDraft) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	switch d.Type {
	case tree.TypeFolder:
		if d.URL != "" {
			return fmt.Errorf("%w: folders cannot have a content url", ErrValidation)
		}
	case tree.TypeLesson:
		if d.URL == "" {
			return fmt.Errorf("%w: lesson url is required", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown node type %q", ErrValidation, d.Type)
	}
	return nil
}

// AddNode commits a draft under its parent with order = current sibling
// count, persists the new aggregate, and returns the created node.
func (s *Service) AddNode(ctx context.Context, draft NodeDraft) (tree.Node, error) {
	if err := draft.Validate(); err != nil {
		return tree.Node{}, err
	}

	data := s.Load(ctx)
	if draft.ParentID != "" && findNode(data.Nodes, draft.ParentID) == nil {
		return tree.Node{}, fmt.Errorf("%w: parent %s not found", ErrValidation, draft.ParentID)
	}

	node := tree.Node{
		ID:       newID(),
		Title:    draft.Title,
		Type:     draft.Type,
		URL:      draft.URL,
		ImageURL: draft.ImageURL,
		ParentID: draft.ParentID,
		Order:    tree.NextOrder(data.Nodes, draft.ParentID),
	}
	data.Nodes = append(data.Nodes, node)

	if err := s.store.SaveAppData(ctx, data); err != nil {
		return tree.Node{}, err
	}
	return node, nil
}

// UpdateNode edits a committed node's title and content addresses in place.
func (s *Service) UpdateNode(ctx context.Context, id string, draft NodeDraft) (tree.Node, error) {
	data := s.Load(ctx)
	node := findNode(data.Nodes, id)
	if node == nil {
		return tree.Node{}, fmt.Errorf("%w: node %s", ErrNodeNotFound, id)
	}

	draft.Type = node.Type
	if draft.ParentID == "" {
		draft.ParentID = node.ParentID
	}
	if err := draft.Validate(); err != nil {
		return tree.Node{}, err
	}

	node.Title = draft.Title
	node.URL = draft.URL
	node.ImageURL = draft.ImageURL

	if err := s.store.SaveAppData(ctx, data); err != nil {
		return tree.Node{}, err
	}
	return *node, nil
}

// DeleteNode removes a node and every transitive descendant atomically and
// returns the set of removed ids so callers can clear selection and evict
// dependent state (banks, open sessions).
func (s *Service) DeleteNode(ctx context.Context, id string) (map[string]struct{}, error) {
	data := s.Load(ctx)
	if findNode(data.Nodes, id) == nil {
		return nil, fmt.Errorf("%w: node %s", ErrNodeNotFound, id)
	}

	removed, err := tree.CascadeDeleteIDs(data.Nodes, id)
	if err != nil {
		return nil, err
	}
	data.Nodes, err = tree.RemoveSubtree(data.Nodes, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveAppData(ctx, data); err != nil {
		return nil, err
	}
	return removed, nil
}

// ReorderNode moves a node one step among its siblings and persists the
// renormalized snapshot.
func (s *Service) ReorderNode(ctx context.Context, id string, dir tree.Direction) error {
	data := s.Load(ctx)
	data.Nodes = tree.Reorder(data.Nodes, id, dir)
	return s.store.SaveAppData(ctx, data)
}

// AddLessonResource appends a resource link to one lesson.
func (s *Service) AddLessonResource(ctx context.Context, lessonID, title, url string) (tree.ResourceLink, error) {
	if title == "" || url == "" {
		return tree.ResourceLink{}, fmt.Errorf("%w: resource title and url are required", ErrValidation)
	}

	data := s.Load(ctx)
	node := findNode(data.Nodes, lessonID)
	if node == nil {
		return tree.ResourceLink{}, fmt.Errorf("%w: node %s", ErrNodeNotFound, lessonID)
	}
	if node.Type != tree.TypeLesson {
		return tree.ResourceLink{}, fmt.Errorf("%w: resources belong to lessons, %s is a folder", ErrValidation, lessonID)
	}

	link := tree.ResourceLink{ID: newID(), Title: title, URL: url}
	node.Resources = append(node.Resources, link)

	if err := s.store.SaveAppData(ctx, data); err != nil {
		return tree.ResourceLink{}, err
	}
	return link, nil
}

// DeleteLessonResource removes one resource link from a lesson.
func (s *Service) DeleteLessonResource(ctx context.Context, lessonID, resourceID string) error {
	data := s.Load(ctx)
	node := findNode(data.Nodes, lessonID)
	if node == nil {
		return fmt.Errorf("%w: node %s", ErrNodeNotFound, lessonID)
	}

	kept := node.Resources[:0:0]
	for _, r := range node.Resources {
		if r.ID != resourceID {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(node.Resources) {
		return fmt.Errorf("%w: resource %s", ErrNodeNotFound, resourceID)
	}
	node.Resources = kept

	return s.store.SaveAppData(ctx, data)
}

// AddGlobalResource appends a link to the course-wide resource list.
func (s *Service) AddGlobalResource(ctx context.Context, title, url string) (tree.ResourceLink, error) {
	if title == "" || url == "" {
		return tree.ResourceLink{}, fmt.Errorf("%w: resource title and url are required", ErrValidation)
	}

	data := s.Load(ctx)
	link := tree.ResourceLink{ID: newID(), Title: title, URL: url}
	data.GlobalResources = append(data.GlobalResources, link)

	if err := s.store.SaveAppData(ctx, data); err != nil {
		return tree.ResourceLink{}, err
	}
	return link, nil
}

// DeleteGlobalResource removes a link from the course-wide resource list.
func (s *Service) DeleteGlobalResource(ctx context.Context, resourceID string) error {
	data := s.Load(ctx)
	kept := data.GlobalResources[:0:0]
	for _, r := range data.GlobalResources {
		if r.ID != resourceID {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(data.GlobalResources) {
		return fmt.Errorf("%w: resource %s", ErrNodeNotFound, resourceID)
	}
	data.GlobalResources = kept

	return s.store.SaveAppData(ctx, data)
}

// SetHomeURL updates the landing page address.
func (s *Service) SetHomeURL(ctx context.Context, url string) error {
	data := s.Load(ctx)
	data.HomeURL = url
	return s.store.SaveAppData(ctx, data)
}

func findNode(nodes []tree.Node, id string) *tree.Node {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
	}
	return nil
}

func newID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
