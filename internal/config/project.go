package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ProjectFile is the CumulusCI project configuration filename.
const ProjectFile = "cumulusci.yml"

// Project is the subset of cumulusci.yml this server cares about: the
// project identity and the names of tasks the project defines locally.
// Locally defined tasks appear in `cci task list` too, but reading the
// file lets the server describe a repo without a working cci install.
type Project struct {
	Name  string
	Tasks []ProjectTask
}

// ProjectTask is a task declared (or overridden) in cumulusci.yml.
type ProjectTask struct {
	Name        string
	Description string
}

// rawProject mirrors the cumulusci.yml structure we read. Unknown keys
// are ignored by the YAML decoder, so the read tolerates the rest of
// the (large) cumulusci.yml schema.
type rawProject struct {
	Project struct {
		Name string `yaml:"name"`
	} `yaml:"project"`
	Tasks map[string]struct {
		Description string `yaml:"description"`
	} `yaml:"tasks"`
}

// LoadProject reads cumulusci.yml from dir. A missing file is not an
// error — it returns (nil, nil), since the server also runs outside
// CumulusCI project roots.
func LoadProject(dir string) (*Project, error) {
	data, err := os.ReadFile(filepath.Join(dir, ProjectFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ProjectFile, err)
	}

	var raw rawProject
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ProjectFile, err)
	}

	p := &Project{Name: raw.Project.Name}
	for name, t := range raw.Tasks {
		p.Tasks = append(p.Tasks, ProjectTask{Name: name, Description: t.Description})
	}
	sort.Slice(p.Tasks, func(i, j int) bool { return p.Tasks[i].Name < p.Tasks[j].Name })
	return p, nil
}

// TaskNames returns the project-defined task names in sorted order.
func (p *Project) TaskNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, len(p.Tasks))
	for i, t := range p.Tasks {
		names[i] = t.Name
	}
	return names
}
