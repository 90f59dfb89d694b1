// Package command hosts the write-side handlers for user provisioning, room
// lifecycle, and profile management. Handlers implement gocommand.Commander
// and are wired together by the service facade.
package command
