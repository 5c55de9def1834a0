package firopt

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Plan is a YAML batch description:
//
//	defaults:
//	  growth: 1.0
//	  window: hamming
//	filters:
//	  - path: noise_fir_default.txt
//	    growth: 2.0
//	  - path: harmonic_base.txt
type Plan struct {
	Defaults PlanDefaults `yaml:"defaults"`
	Filters  []PlanFilter `yaml:"filters"`

	// dir is the directory relative filter paths resolve against.
	dir string
}

// PlanDefaults apply to every filter of a plan.
type PlanDefaults struct {
	Growth     float64     `yaml:"growth"`
	Window     *WindowType `yaml:"window"`
	KaiserBeta float64     `yaml:"kaiser_beta"`
}

// PlanFilter is one plan entry.
type PlanFilter struct {
	Path   string  `yaml:"path"`
	Growth float64 `yaml:"growth"`
	Output string  `yaml:"output"`
}

// LoadPlan reads a plan file. Relative filter paths are resolved against the
// plan's directory.
func LoadPlan(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan: %w", err)
	}
	defer func() { _ = f.Close() }()

	plan, err := ReadPlan(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return plan, nil
}

// ReadPlan decodes a plan from r, resolving relative paths against dir.
func ReadPlan(r io.Reader, dir string) (*Plan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var plan Plan
	if err := dec.Decode(&plan); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty plan")
		}
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if len(plan.Filters) == 0 {
		return nil, errors.New("plan lists no filters")
	}
	for i, flt := range plan.Filters {
		if flt.Path == "" {
			return nil, fmt.Errorf("filter %d: missing path", i+1)
		}
		if flt.Growth < 0 {
			return nil, fmt.Errorf("filter %d (%s): negative growth %v", i+1, flt.Path, flt.Growth)
		}
	}
	if plan.Defaults.Growth < 0 {
		return nil, fmt.Errorf("negative default growth %v", plan.Defaults.Growth)
	}
	plan.dir = dir
	return &plan, nil
}

// Apply merges the plan defaults into base.
func (p *Plan) Apply(base Options) Options {
	if p.Defaults.Growth > 0 {
		base.GrowthFactor = p.Defaults.Growth
	}
	if p.Defaults.Window != nil {
		base.Window = *p.Defaults.Window
	}
	if p.Defaults.KaiserBeta > 0 {
		base.KaiserBeta = p.Defaults.KaiserBeta
	}
	return base
}

// Jobs resolves the plan into batch jobs. Filters whose file does not exist
// are returned separately so the caller can warn and carry on.
func (p *Plan) Jobs() (jobs []Job, missing []string, err error) {
	for _, flt := range p.Filters {
		path := p.resolve(flt.Path)
		if _, statErr := os.Stat(path); statErr != nil {
			if errors.Is(statErr, fs.ErrNotExist) {
				missing = append(missing, path)
				continue
			}
			return nil, nil, fmt.Errorf("stat %s: %w", path, statErr)
		}

		job := Job{Path: path, GrowthFactor: flt.Growth}
		if flt.Output != "" {
			job.Output = p.resolve(flt.Output)
		}
		jobs = append(jobs, job)
	}
	return jobs, missing, nil
}

func (p *Plan) resolve(path string) string {
	if filepath.IsAbs(path) || p.dir == "" {
		return path
	}
	return filepath.Join(p.dir, path)
}
