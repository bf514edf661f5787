// Package services holds the business logic behind the HTTP handlers:
//   - AuthService: registration, login, logout and the caller's own profile
//   - AccountService: admin account listing and activation
//   - StudentService: the role-scoped student directory
//   - CompanyUpdateService: company updates and their review workflow
package services
