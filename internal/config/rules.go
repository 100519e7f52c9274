package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"platingreport/internal/domain"
)

// Rules holds the thresholds and the attribute names the charts read.
type Rules struct {
	Thresholds domain.Thresholds `yaml:"thresholds"`
	Charts     ChartColumns      `yaml:"charts"`
}

type ChartColumns struct {
	Sequence string `yaml:"sequence"`
	Date     string `yaml:"date"`
	Material string `yaml:"material"`
	ScatterX string `yaml:"scatterX"`
	ScatterY string `yaml:"scatterY"`
}

func DefaultRules() Rules {
	return Rules{
		Thresholds: domain.Thresholds{
			{Attribute: "硫酸實際值(g/l)", Low: 62, High: 68},
			{Attribute: "硫酸銅實際值(g/l)", Low: 200, High: 210},
			{Attribute: "氯離子實際值(ppm/l)", Low: 64, High: 80},
		},
		Charts: ChartColumns{
			Sequence: "電鍍次數",
			Date:     "電鍍開始時間",
			Material: "磷銅球(kg)",
			ScatterX: "SP10平均",
			ScatterY: "硬度HB",
		},
	}
}

// LoadRules returns DefaultRules overlaid with the YAML file at path.
// An empty path yields the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Rules{}, fmt.Errorf("rules file %s not found: %w", path, err)
		}
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}

	var file Rules
	if err = yaml.Unmarshal(data, &file); err != nil {
		return Rules{}, fmt.Errorf("parse rules: %w", err)
	}

	if len(file.Thresholds) > 0 {
		rules.Thresholds = file.Thresholds
	}
	mergeCharts(&rules.Charts, file.Charts)

	if err = rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func mergeCharts(dst *ChartColumns, src ChartColumns) {
	if v := strings.TrimSpace(src.Sequence); v != "" {
		dst.Sequence = v
	}
	if v := strings.TrimSpace(src.Date); v != "" {
		dst.Date = v
	}
	if v := strings.TrimSpace(src.Material); v != "" {
		dst.Material = v
	}
	if v := strings.TrimSpace(src.ScatterX); v != "" {
		dst.ScatterX = v
	}
	if v := strings.TrimSpace(src.ScatterY); v != "" {
		dst.ScatterY = v
	}
}

func (r Rules) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(r.Thresholds))

	for i, th := range r.Thresholds {
		name := strings.TrimSpace(th.Attribute)
		if name == "" {
			errs = append(errs, fmt.Errorf("threshold %d: attribute is empty", i))
			continue
		}
		if th.Low > th.High {
			errs = append(errs, fmt.Errorf("threshold %s: low %g is above high %g", name, th.Low, th.High))
		}
		if _, ok := seen[name]; ok {
			errs = append(errs, fmt.Errorf("threshold %s: duplicated", name))
		}
		seen[name] = struct{}{}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	return nil
}
