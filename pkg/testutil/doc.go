// Package testutil provides utilities for testing csync components.
//
// Key components:
//   - TestEnvironment: isolated home and configs directories, with optional
//     real git plumbing (a bare remote plus clones acting as machines)
//   - MockVCS: testify mock of vcs.VersionControl for orchestration tests
//
// Usage guidelines:
//   - Prefer MockVCS when a test is about decisions, not git behaviour
//   - Use NewGitEnvironment for anything that depends on what git actually
//     does; those tests skip when git is not installed
//   - All test data is defined inline
package testutil
