package grid

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/depflow/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// HCL schema for a grid file: an optional locals block plus task blocks.
//
//	locals {
//	  out = "build"
//	}
//
//	task "compile" {
//	  run = "gcc -o ${local.out}/app main.c"
//	}
//
//	task "test" {
//	  depends_on = ["compile"]
//	  run = "${local.out}/app --selftest"
//	}
type hclLocals struct {
	Body hcl.Body `hcl:",remain"`
}

type hclTask struct {
	Name      string   `hcl:"name,label"`
	DependsOn []string `hcl:"depends_on,optional"`
	Run       string   `hcl:"run,optional"`
}

// hclLocalsPass captures the locals block and defers everything else, so
// locals can be evaluated before task expressions reference them.
type hclLocalsPass struct {
	Locals *hclLocals `hcl:"locals,block"`
	Remain hcl.Body   `hcl:",remain"`
}

type hclTasksPass struct {
	Tasks []*hclTask `hcl:"task,block"`
}

// DecodeHCLFile parses and decodes a single HCL grid file.
func DecodeHCLFile(ctx context.Context, path string) (*Grid, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding HCL grid file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", path, diags.Error())
	}

	var pass1 hclLocalsPass
	if diags := gohcl.DecodeBody(file.Body, nil, &pass1); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", path, diags.Error())
	}

	evalCtx, err := buildEvalContext(pass1.Locals)
	if err != nil {
		return nil, fmt.Errorf("invalid locals in %s: %w", path, err)
	}

	var pass2 hclTasksPass
	if diags := gohcl.DecodeBody(pass1.Remain, evalCtx, &pass2); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", path, diags.Error())
	}

	g := &Grid{}
	for _, t := range pass2.Tasks {
		if t.Name == "" {
			return nil, fmt.Errorf("task with empty name in %s", path)
		}
		g.Tasks = append(g.Tasks, Task{Name: t.Name, DependsOn: t.DependsOn, Run: t.Run})
	}
	logger.Debug("Decoded HCL grid file.", "path", path, "tasks_found", len(g.Tasks))
	return g, nil
}

// buildEvalContext evaluates the attributes of the locals block into cty
// values exposed to task expressions as local.<name>. Locals are literals:
// they cannot reference other locals or tasks.
func buildEvalContext(locals *hclLocals) (*hcl.EvalContext, error) {
	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{}}
	if locals == nil {
		return evalCtx, nil
	}
	attrs, diags := locals.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s", diags.Error())
	}
	vals := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("local %q: %s", name, diags.Error())
		}
		vals[name] = v
	}
	if len(vals) > 0 {
		evalCtx.Variables["local"] = cty.ObjectVal(vals)
	}
	return evalCtx, nil
}
