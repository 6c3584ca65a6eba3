// Package domain contains the core entities of the Planora task manager:
// users and their tasks. Entities own their validation rules; persistence
// and transport concerns live elsewhere.
package domain
