package tool

import (
	"fmt"

	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/internal/util"
)

// Names of the built-in directive tools a model-backed agent advertises. The
// calls are never executed; the agent converts them into structured message
// directives validated by the orchestration.
const (
	TransferToolName = "transfer_to_agent"
	CompleteToolName = "complete_task"
)

// TransferDescription returns the description of the transfer tool listing
// the allowed targets and their rationale.
func TransferDescription(options []core.HandoffOption) string {
	desc := "Transfer the conversation to another agent that is better suited to continue. Allowed targets:"
	for _, o := range options {
		desc += fmt.Sprintf("\n- %s: %s", o.Target, o.Rationale)
	}
	return desc
}

// TransferParameters returns the JSON schema for the transfer tool. The
// agent enum is restricted to the allowed targets.
func TransferParameters(options []core.HandoffOption) map[string]any {
	targets := make([]string, 0, len(options))
	for _, o := range options {
		targets = append(targets, o.Target)
	}
	return util.ObjectSchema(map[string]util.Property{
		"agent":  {Type: util.TypeString, Description: "Target agent name", Enum: targets},
		"reason": {Type: util.TypeString, Description: "Why the transfer is needed"},
	}, "agent")
}

// CompleteDescription is the description of the completion tool.
const CompleteDescription = "Complete the task when the user's request has been fully handled. Provide a short summary of the outcome."

// CompleteParameters returns the JSON schema for the completion tool.
func CompleteParameters() map[string]any {
	return util.ObjectSchema(map[string]util.Property{
		"summary": {Type: util.TypeString, Description: "Summary of the completed task"},
	}, "summary")
}

// ParseTransfer validates transfer tool arguments against the schema for
// options and converts them into a directive. A target outside options is a
// CodeBadArgs ToolError.
func ParseTransfer(args map[string]any, options []core.HandoffOption) (core.Transfer, error) {
	if err := util.ValidateParameters(args, TransferParameters(options)); err != nil {
		return core.Transfer{}, badArgs(TransferToolName, err)
	}
	agent, _ := args["agent"].(string)
	reason, _ := args["reason"].(string)
	return core.Transfer{Target: agent, Reason: reason}, nil
}

// ParseCompletion validates completion tool arguments and converts them into
// a directive.
func ParseCompletion(args map[string]any) (core.Completion, error) {
	if err := util.ValidateParameters(args, CompleteParameters()); err != nil {
		return core.Completion{}, badArgs(CompleteToolName, err)
	}
	summary, _ := args["summary"].(string)
	return core.Completion{Summary: summary}, nil
}

func badArgs(tool string, err error) *ToolError {
	return &ToolError{Tool: tool, Message: err.Error(), Code: CodeBadArgs, Details: err}
}
