// Package marked manages files from outside the configs tree that the user
// opted into syncing.
//
// Marking moves a home path into external/<relative path> inside the configs
// repository and leaves a symlink behind. The list of marked entries lives in
// .marked-files, one home-relative path per line, in insertion order and
// without duplicates.
package marked
