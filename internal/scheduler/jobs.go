package scheduler

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dhima/mysql-crud/internal/query"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// jobsSchema describes the purge job file. A job must produce a WHERE
// clause, either from where or from older_than together with column.
const jobsSchema = `{
  "type": "object",
  "required": ["jobs"],
  "additionalProperties": false,
  "properties": {
    "jobs": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "cron", "table"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "cron": {"type": "string", "minLength": 1},
          "timezone": {"type": "string"},
          "table": {"type": "string", "minLength": 1},
          "where": {"type": "string", "minLength": 1},
          "args": {"type": "array"},
          "column": {"type": "string", "minLength": 1},
          "older_than": {"type": "string", "minLength": 1}
        },
        "dependencies": {
          "older_than": ["column"],
          "column": ["older_than"]
        },
        "anyOf": [
          {"required": ["where"]},
          {"required": ["older_than"]}
        ]
      }
    }
  }
}`

var jobsSchemaLoader = gojsonschema.NewStringLoader(jobsSchema)

// Job is a scheduled scoped delete.
type Job struct {
	Name      string `yaml:"name"`
	Cron      string `yaml:"cron"`
	Timezone  string `yaml:"timezone"`
	Table     string `yaml:"table"`
	Where     string `yaml:"where"`
	Args      []any  `yaml:"args"`
	Column    string `yaml:"column"`
	OlderThan string `yaml:"older_than"`
}

type jobFile struct {
	Jobs []Job `yaml:"jobs"`
}

// SchemaError lists every schema violation found in a job file.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "invalid purge job file: " + strings.Join(e.Problems, "; ")
}

// LoadJobs reads and validates a purge job file.
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read purge jobs: %w", err)
	}
	return ParseJobs(data)
}

// ParseJobs validates a YAML purge job document against the job schema
// and decodes it.
func ParseJobs(data []byte) ([]Job, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode purge jobs: %w", err)
	}
	if doc == nil {
		return nil, nil
	}

	result, err := gojsonschema.Validate(jobsSchemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate purge jobs: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, &SchemaError{Problems: problems}
	}

	var file jobFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode purge jobs: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Jobs))
	for i := range file.Jobs {
		job := &file.Jobs[i]
		if _, dup := seen[job.Name]; dup {
			return nil, fmt.Errorf("purge job %s: duplicate name", job.Name)
		}
		seen[job.Name] = struct{}{}

		if err := job.validate(); err != nil {
			return nil, fmt.Errorf("purge job %s: %w", job.Name, err)
		}
	}
	return file.Jobs, nil
}

func (j Job) validate() error {
	if _, err := parser.Parse(j.Cron); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	if j.Timezone != "" && hasInlineTimezone(j.Cron) {
		return errors.New("timezone is set both inline in cron and in timezone")
	}
	if _, err := resolveTimezone(j.Timezone); err != nil {
		return err
	}
	if !query.ValidIdentifier(j.Table) {
		return query.ErrInvalidIdentifier{Name: j.Table}
	}
	q, err := j.Statement(time.Now())
	if err != nil {
		return err
	}
	if _, err := q.Render(); err != nil {
		return fmt.Errorf("where: %w", err)
	}
	return nil
}

// Age parses OlderThan. It is zero when the job has no age condition.
func (j Job) Age() (time.Duration, error) {
	if j.OlderThan == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(j.OlderThan)
	if err != nil {
		return 0, fmt.Errorf("invalid older_than: %w", err)
	}
	if d <= 0 {
		return 0, errors.New("older_than must be positive")
	}
	return d, nil
}

// Statement builds the DELETE for a run at now. older_than adds
// "<column> < ?" bound to now minus the age.
func (j Job) Statement(now time.Time) (query.DeleteBuilder, error) {
	age, err := j.Age()
	if err != nil {
		return query.DeleteBuilder{}, err
	}

	q := query.Delete(j.Table)
	if j.Where != "" {
		q = q.Where(j.Where, j.Args...)
	}
	if age > 0 {
		if !query.ValidIdentifier(j.Column) {
			return query.DeleteBuilder{}, query.ErrInvalidIdentifier{Name: j.Column}
		}
		q = q.And(query.QuoteIdentifier(j.Column)+" < ?", now.Add(-age))
	}
	return q, nil
}
