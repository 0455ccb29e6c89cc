package content

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lop-hoc/lophoc-server/internal/tree"
)

//go:embed seed.yaml
var seedYAML []byte

type seedNode struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Type      string `yaml:"type"`
	URL       string `yaml:"url"`
	ImageURL  string `yaml:"imageUrl"`
	ParentID  string `yaml:"parentId"`
	Order     int    `yaml:"order"`
	Resources []struct {
		ID    string `yaml:"id"`
		Title string `yaml:"title"`
		URL   string `yaml:"url"`
	} `yaml:"lessonResources"`
}

type seedFile struct {
	HomeURL         string     `yaml:"homeUrl"`
	Nodes           []seedNode `yaml:"nodes"`
	GlobalResources []struct {
		ID    string `yaml:"id"`
		Title string `yaml:"title"`
		URL   string `yaml:"url"`
	} `yaml:"globalResources"`
}

// Seed returns the built-in course data used when the document store has no
// aggregate yet or a read fails.
func Seed() (AppData, error) {
	var f seedFile
	if err := yaml.Unmarshal(seedYAML, &f); err != nil {
		return AppData{}, fmt.Errorf("decode seed data: %w", err)
	}

	data := AppData{HomeURL: f.HomeURL}
	for _, n := range f.Nodes {
		node := tree.Node{
			ID:       n.ID,
			Title:    n.Title,
			Type:     tree.NodeType(n.Type),
			URL:      n.URL,
			ImageURL: n.ImageURL,
			ParentID: n.ParentID,
			Order:    n.Order,
		}
		for _, r := range n.Resources {
			node.Resources = append(node.Resources, tree.ResourceLink{ID: r.ID, Title: r.Title, URL: r.URL})
		}
		data.Nodes = append(data.Nodes, node)
	}
	for _, r := range f.GlobalResources {
		data.GlobalResources = append(data.GlobalResources, tree.ResourceLink{ID: r.ID, Title: r.Title, URL: r.URL})
	}
	return data, nil
}
