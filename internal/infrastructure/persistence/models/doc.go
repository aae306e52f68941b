// Package models contains the GORM models behind the repositories. Domain
// entities carry no ORM tags; each model maps one table and converts to and
// from its entity.
//
//   - base.go: shared id, version and tenant columns
//   - accounting.go: GL accounts, journal entries, rules, closures, provisioning
//   - organisation.go: offices, staff, tellers, cashiers, holidays, working days
//   - portfolio.go: clients, documents, groups, calendars, meetings
//   - loan.go: loan products, loans, schedules and transactions
//   - hook.go, command.go, identity.go: webhooks, the command audit trail, users
package models
