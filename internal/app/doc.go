// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the run lifecycle: static file copies,
// sequential group runs sharing one worker pool, orphan pruning, and the
// modified-files report. It is decoupled from any specific entrypoint.
package app
