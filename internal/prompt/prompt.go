// Package prompt renders the fixed templates sent to the model providers.
package prompt

import (
	"fmt"
	"strings"

	"github.com/Cyclone1070/termai/internal/executor"
	"github.com/Cyclone1070/termai/internal/sysinfo"
	"github.com/Cyclone1070/termai/internal/task"
)

// Verdict markers the execute-analysis template instructs the model to emit.
const (
	VerdictSuccess = "VERDICT: SUCCESS"
	VerdictFailed  = "VERDICT: FAILED"
)

// ErrMissingExecResult is returned when an execute prompt is requested
// without the execution result it must embed.
var ErrMissingExecResult = fmt.Errorf("execute prompt requires an execution result")

// Build renders the prompt for req. It is a pure function: no I/O, inputs
// are not mutated. execResult is required for task.KindExecute and ignored
// otherwise.
func Build(req task.Request, ctx sysinfo.Context, execResult *executor.Result) (string, error) {
	switch req.Kind {
	case task.KindAsk:
		return buildAsk(req.Payload, ctx), nil
	case task.KindDebug:
		return buildDebug(req.Payload, ctx), nil
	case task.KindExplain:
		if req.ErrorText != "" {
			return buildExplainError(req.Payload, req.ErrorText, ctx), nil
		}
		return buildExplainTutorial(req.Payload, ctx), nil
	case task.KindExecute:
		if execResult == nil {
			return "", ErrMissingExecResult
		}
		return buildExecuteAnalysis(req.Payload, ctx, execResult), nil
	default:
		return "", fmt.Errorf("unknown task kind %q", req.Kind)
	}
}

// contextBlock renders the shared system-context section. The git branch
// line is only present when the working directory is inside a repository.
func contextBlock(ctx sysinfo.Context) string {
	var sb strings.Builder
	sb.WriteString("Current system context:\n")
	fmt.Fprintf(&sb, "- Working directory: %s\n", ctx.WorkingDir)
	fmt.Fprintf(&sb, "- Shell: %s\n", ctx.Shell)
	fmt.Fprintf(&sb, "- OS: %s\n", ctx.OS)
	fmt.Fprintf(&sb, "- User: %s", ctx.User)
	if ctx.GitBranch != "" {
		fmt.Fprintf(&sb, "\n- Git branch: %s", ctx.GitBranch)
	}
	return sb.String()
}

func buildAsk(question string, ctx sysinfo.Context) string {
	return fmt.Sprintf(`You are an expert terminal and development assistant. The user is asking: %q

%s

Please respond using clean Markdown with concise headings (##/###), bullet lists, and fenced bash code blocks for commands (`+"```bash"+`). Keep it skimmable and practical, with executable steps for the OS shown in the context.`,
		question, contextBlock(ctx))
}

func buildDebug(issue string, ctx sysinfo.Context) string {
	return fmt.Sprintf(`You are an expert system administrator and debugger. The user encountered this terminal error or issue:

ERROR/ISSUE:
%s

%s

Please analyze this error and provide:

1. DIAGNOSIS: What is causing this error
2. IMMEDIATE SOLUTION: The exact command(s) to fix this issue
3. EXPLANATION: Why this error occurred
4. PREVENTION: How to avoid this in the future
5. ALTERNATIVES: Other ways to accomplish what the user was trying to do

Use clean Markdown and fenced bash code blocks for commands that are executable on the OS shown in the context.`,
		issue, contextBlock(ctx))
}

func buildExplainError(command, errorText string, ctx sysinfo.Context) string {
	return fmt.Sprintf(`You are an expert terminal command specialist. The user tried to run this command but it failed:

COMMAND ATTEMPTED: %s
ERROR OUTPUT: %s

%s

Provide:

1. ERROR ANALYSIS: What went wrong with this specific command
2. CORRECTED COMMAND: The exact fixed version of the command
3. EXPLANATION: Why the original command failed
4. COMMAND BREAKDOWN: Explain each part of the corrected command
5. USAGE EXAMPLES: 3-5 practical examples of how to use this command correctly
6. COMMON MISTAKES: Other common errors with this command and how to avoid them
7. RELATED COMMANDS: Similar or complementary commands that might be useful

Respond in clean Markdown. Use fenced bash code blocks for commands (`+"```bash"+`).`,
		command, errorText, contextBlock(ctx))
}

func buildExplainTutorial(command string, ctx sysinfo.Context) string {
	return fmt.Sprintf(`You are an expert terminal command instructor. The user wants to learn about this command: %s

%s

Provide a concise Markdown guide including:

1. COMMAND PURPOSE
2. BASIC SYNTAX with real examples
3. COMMON OPTIONS
4. 5-7 PRACTICAL EXAMPLES
5. ADVANCED USAGE
6. SAFETY NOTES
7. RELATED COMMANDS
8. TROUBLESHOOTING

Use fenced bash blocks for commands.`,
		command, contextBlock(ctx))
}

// StatusLabel derives the prompt's status label from an exit code.
// Success is decided by the exit code alone, never by output content.
func StatusLabel(exitCode int) string {
	if exitCode == 0 {
		return "SUCCESS"
	}
	return "FAILED"
}

func buildExecuteAnalysis(command string, ctx sysinfo.Context, res *executor.Result) string {
	status := StatusLabel(res.ExitCode)

	stdout := res.Stdout
	if stdout == "" {
		stdout = "(no output)"
	}
	stderr := res.Stderr
	if stderr == "" {
		stderr = "(no errors)"
	}

	return fmt.Sprintf(`You are an expert system administrator and command analyst. A command was just executed and you need to analyze the results.

COMMAND EXECUTED: %s
EXECUTION STATUS: %s
RETURN CODE: %d

STDOUT:
%s

STDERR:
%s

%s

CRITICAL: The verdict must be based on the return code:
- Return code 0 = SUCCESS (command completed successfully)
- Return code non-zero = FAILED (command failed, regardless of output content)

Commands like 'git main' fail with return code 1 and show error messages in stdout, not stderr. This is still a FAILURE.

Please provide a comprehensive analysis in the following format:

## EXECUTION VERDICT
**Status:** %s
**Command:** `+"`%s`"+`
**Return Code:** %d

## ANALYSIS
- **What happened:** Brief explanation of what the command did
- **Success/Failure reason:** Why it succeeded or failed (MUST consider return code)
- **Output interpretation:** What the output means

## RECOMMENDATIONS
- **What could be done differently:** Suggestions for improvement
- **Alternative approaches:** Other ways to achieve the same goal
- **Next steps:** What to do next

## COMMAND BREAKDOWN
- **Purpose:** What this command is designed to do
- **Key components:** Important parts of the command
- **Safety notes:** Any potential risks or considerations

CRITICAL: At the very end of your response, add a verdict line in this exact format:
- If return code is 0: %s
- If return code is non-zero: %s

The verdict MUST match the return code, not the content of the output.

Use clean Markdown formatting with fenced bash code blocks for commands.`,
		command, status, res.ExitCode,
		stdout, stderr,
		contextBlock(ctx),
		status, command, res.ExitCode,
		VerdictSuccess, VerdictFailed)
}
