package client

import (
	"context"
	"slices"
	"strings"

	"github.com/Iron-Ham/taskclient/internal/dispatch"
	"github.com/Iron-Ham/taskclient/internal/errors"
)

// TaskDefinition is a task the server can run, bound to the client that
// discovered it.
type TaskDefinition struct {
	Name string
	Help string

	client *Client
}

// Run starts the task. A foreground task (the default) is waited for and
// its id returned once it has terminated; a background task returns its id
// as soon as the server accepted it. A main_task entry in params takes
// precedence over WithForeground.
func (d *TaskDefinition) Run(ctx context.Context, params dispatch.Params, opts ...StartOption) (int64, error) {
	// The definition always names the task; a task_name entry must not
	// redirect the call to another one.
	if _, ok := params[dispatch.ParamTaskName]; ok {
		params = params.Clone()
		delete(params, dispatch.ParamTaskName)
	}

	sc := startConfig{foreground: true}
	for _, opt := range opts {
		opt(&sc)
	}
	foreground := sc.foreground
	if v, ok := params[dispatch.ParamMainTask]; ok {
		foreground = truthy(v)
	}

	if foreground {
		d.client.logger.Info("starting task in foreground", "task", d.Name)
		return d.client.StartTaskAndWait(ctx, d.Name, params, opts...)
	}

	id, err := d.client.StartTask(ctx, d.Name, params, opts...)
	if err != nil {
		return 0, err
	}
	d.client.logger.WithTask(id).Info("started task in background", "task", d.Name)
	return id, nil
}

// String renders the definition as "Task <name>: <help>".
func (d *TaskDefinition) String() string {
	return "Task " + d.Name + ": " + d.Help
}

// RefreshTaskList replaces the task catalog with the server's current list
// of definitions.
func (c *Client) RefreshTaskList(ctx context.Context) error {
	defs, err := c.dispatcher.ListTaskDefinitions(ctx)
	if err != nil {
		c.logger.Error("task list query failed", "error", err)
		return errors.NewDispatchError("list", err)
	}

	catalog := make(map[string]*TaskDefinition, len(defs))
	for _, def := range defs {
		catalog[def.Name] = &TaskDefinition{Name: def.Name, Help: def.Description, client: c}
	}

	c.catalogMu.Lock()
	c.catalog = catalog
	c.catalogMu.Unlock()

	c.logger.Debug("task catalog refreshed", "count", len(catalog))
	return nil
}

// Task returns the definition with the given name.
func (c *Client) Task(name string) (*TaskDefinition, error) {
	c.catalogMu.RLock()
	defer c.catalogMu.RUnlock()

	def, ok := c.catalog[name]
	if !ok {
		return nil, errors.NewNotFoundError("task definition", name)
	}
	return def, nil
}

// Tasks returns every known definition sorted by name.
func (c *Client) Tasks() []*TaskDefinition {
	c.catalogMu.RLock()
	out := make([]*TaskDefinition, 0, len(c.catalog))
	for _, def := range c.catalog {
		out = append(out, def)
	}
	c.catalogMu.RUnlock()

	slices.SortFunc(out, func(a, b *TaskDefinition) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
