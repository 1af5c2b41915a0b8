// Package config handles loading and validation of studeval configuration.
//
// There are two kinds of configuration:
//
//   - the application config at ~/.config/studeval/config.toml, which holds
//     machine-level settings such as the base directory and shell
//   - evaluation sheets, one TOML or JSON file per assignment, which define
//     the repositories to grade and the category tree with its commands
//
// # Configuration Sources (highest priority first)
//
//   - STUDEVAL_BASE_DIR env var: base directory for repos and evaluations
//   - STUDEVAL_SHELL env var: shell argv, split on whitespace
//   - Config file settings
//   - Default values
//
// # Key Settings
//
//   - base_dir: where repos/ and evaluations/ live (absolute or ~/...);
//     empty means the directory of the sheet
//   - shell: argv commands are appended to (default /bin/sh -c)
//   - placeholder: default URL template token (default "{{number}}")
//   - drain_timeout, kill_grace: command engine timings as Go durations
//   - theme: color theme name
//
// # Evaluation Sheets
//
// Sheets ending in .json use the camelCase keys of earlier releases; all
// other sheets are TOML:
//
//	title = "Assignment 1"
//	repository_url_template = "git@git.example.com:course/student-{{number}}.git"
//	tag = "final"
//	deadline = 2024-05-01
//
//	[[categories]]
//	name = "Build"
//	max_points = 2
//	commands = ["make"]
//
// # Path Validation
//
// Directory paths must be absolute or start with ~ (no relative paths like "."
// or "..") to avoid confusion about the working directory.
package config
