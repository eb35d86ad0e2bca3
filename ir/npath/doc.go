// Package npath implements the node path language: '/'-separated name
// segments, a leading '/' for absolute paths, and ".." for parent
// traversal.  It also owns name-syntax validation, which every member
// write in the tree goes through.
package npath
