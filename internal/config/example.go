package config

// ExampleTOML is a commented config file with every key at its default.
const ExampleTOML = `# todo configuration

# Output format: text or json
format = "text"

# Debug logging to stderr
verbose = false

[ids]
# uuid4 (random), uuid7 (time-sortable) or counter (prefix + 1, 2, ...)
strategy = "uuid4"
# Only used by the counter strategy
prefix = "todo-"
`
