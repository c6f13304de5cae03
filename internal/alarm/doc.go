// Package alarm defines the alarm record model and the collaborator-owned
// JSON source the scheduler reloads on every minute edge.
package alarm
