package mcpserver

// TaskContract describes the rules LLM consumers should follow when
// creating tasks and captures.
const TaskContract = `# Raido Task Contract

Raido is a personal task list with a few rules on top. Tools that create or
change tasks enforce them; this document explains what they expect.

## Task fields

| field | required | notes |
|---|---|---|
| ` + "`title`" + ` | yes | Short and imperative ("Book flights", not "Flights") |
| ` + "`task_type`" + ` | yes | ` + "`research`" + `, ` + "`decision`" + ` or ` + "`execution`" + ` |
| ` + "`priority`" + ` | yes | ` + "`must`" + ` or ` + "`should`" + ` |
| ` + "`done_criteria`" + ` | yes | An observable condition. "Tickets in inbox", not "work on it" |
| ` + "`due_date`" + ` | no | ` + "`YYYY-MM-DD`" + ` |
| ` + "`parent_id`" + ` | no | Must exist; a task is never its own ancestor |
| ` + "`decision_criteria`" + ` | no | Decision tasks only |
| ` + "`reversible`" + ` | no | Decision tasks only |
| ` + "`exploration_limit`" + ` | no | Decision tasks only; integer >= 0 |

New tasks start in ` + "`todo`" + `. Use ` + "`complete_task`" + ` to finish a task;
` + "`done`" + ` is terminal.

## Rules

1. **Staleness.** An open task untouched for 7 days (` + "`must`" + `) or 21 days
   (` + "`should`" + `) is stale. Any successful change resets the clock.
2. **Carryover.** An open task whose due date has passed must be carried over
   with ` + "`apply_carryover`" + `: ` + "`today`" + `, ` + "`plus_2d`" + `, ` + "`plus_7d`" + ` or
   ` + "`needs_redefine`" + `. Only the last one changes the status.
3. **Convergence.** Children of a decision task count as explored options.
   A decision converges when the options stay within ` + "`exploration_limit`" + `,
   the option structure is small enough to compare, and the decision is either
   reversible or has written ` + "`decision_criteria`" + `.
4. **Extraction.** A checklist item can be promoted to its own task once.
   The new task inherits type, priority and due date from its source task and
   remembers which item it came from.

## Captures

Captures are freeform notes. They stay unresolved until a human resolves them or
links them to a task. Markdown is welcome: a ` + "`# heading`" + ` becomes the task
title and ` + "`- [ ] item`" + ` lines become checklist items when the capture is
promoted.

` + "```" + `markdown
---
done_criteria: Contract signed
tags:
  - home
---

# Renew apartment lease

- [ ] Compare rent with two listings
- [x] Ask landlord about the deposit
` + "```" + `
`
