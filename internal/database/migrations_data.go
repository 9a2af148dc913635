package database

// AttendanceMigrations returns the schema migrations for the attendance
// domain, in the same map[string]string shape MigrationRunner.RunFromStrings
// consumes. Seed data (builtin roles, the builtin permission catalogue, and
// each builtin role's grants) lives in the same migration as the tables it
// populates so a fresh database is immediately usable by an admin account
// created out-of-band.
func AttendanceMigrations() map[string]string {
	return map[string]string{
		"001_locations.sql": `
CREATE TABLE IF NOT EXISTS cities (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS zones (
	id BIGSERIAL PRIMARY KEY,
	city_id BIGINT NOT NULL REFERENCES cities(id) ON DELETE CASCADE,
	name VARCHAR(255) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (city_id, name)
);

CREATE TABLE IF NOT EXISTS wards (
	id BIGSERIAL PRIMARY KEY,
	zone_id BIGINT NOT NULL REFERENCES zones(id) ON DELETE CASCADE,
	name VARCHAR(255) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (zone_id, name)
);

CREATE TABLE IF NOT EXISTS departments (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS designations (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL UNIQUE
);

CREATE INDEX IF NOT EXISTS idx_zones_city_id ON zones(city_id);
CREATE INDEX IF NOT EXISTS idx_wards_zone_id ON wards(zone_id);
`,

		"002_users.sql": `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	emp_code VARCHAR(100),
	email VARCHAR(255) UNIQUE,
	phone VARCHAR(32),
	primary_role VARCHAR(32) NOT NULL DEFAULT 'user',
	department VARCHAR(255),
	password_hash VARCHAR(255) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_emp_code ON users(emp_code) WHERE emp_code IS NOT NULL;
`,

		"003_employees.sql": `
CREATE TABLE IF NOT EXISTS employees (
	id BIGSERIAL PRIMARY KEY,
	emp_code VARCHAR(100) NOT NULL UNIQUE,
	name VARCHAR(255) NOT NULL,
	phone VARCHAR(32),
	ward_id BIGINT NOT NULL REFERENCES wards(id) ON DELETE RESTRICT,
	designation_id BIGINT REFERENCES designations(id) ON DELETE SET NULL,
	face_embedding_ref VARCHAR(255) NOT NULL DEFAULT '',
	face_id VARCHAR(255) NOT NULL DEFAULT '',
	face_confidence DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_employees_face_id ON employees(face_id) WHERE face_id <> '';
CREATE INDEX IF NOT EXISTS idx_employees_ward_id ON employees(ward_id);

CREATE TABLE IF NOT EXISTS supervisor_wards (
	id BIGSERIAL PRIMARY KEY,
	supervisor_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	ward_id BIGINT NOT NULL REFERENCES wards(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (supervisor_id, ward_id)
);

CREATE INDEX IF NOT EXISTS idx_supervisor_wards_ward_id ON supervisor_wards(ward_id);
`,

		"004_rbac.sql": `
CREATE TABLE IF NOT EXISTS roles (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(100) NOT NULL UNIQUE,
	description TEXT,
	is_system BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS permissions (
	id BIGSERIAL PRIMARY KEY,
	module VARCHAR(100) NOT NULL,
	action VARCHAR(100) NOT NULL,
	label VARCHAR(255),
	description TEXT,
	UNIQUE (module, action)
);

CREATE TABLE IF NOT EXISTS role_permissions (
	role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
	permission_id BIGINT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
	PRIMARY KEY (role_id, permission_id)
);

CREATE TABLE IF NOT EXISTS user_roles (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
	assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	assigned_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
	UNIQUE (user_id, role_id)
);

CREATE TABLE IF NOT EXISTS user_permissions (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	permission_id BIGINT NOT NULL REFERENCES permissions(id) ON DELETE CASCADE,
	city_id BIGINT REFERENCES cities(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_city_access (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	city_id BIGINT NOT NULL REFERENCES cities(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, city_id)
);

CREATE TABLE IF NOT EXISTS user_zone_access (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	zone_id BIGINT NOT NULL REFERENCES zones(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, zone_id)
);

CREATE INDEX IF NOT EXISTS idx_user_roles_user_id ON user_roles(user_id);
CREATE INDEX IF NOT EXISTS idx_user_permissions_user_id ON user_permissions(user_id);
CREATE INDEX IF NOT EXISTS idx_user_city_access_user_id ON user_city_access(user_id);
CREATE INDEX IF NOT EXISTS idx_user_zone_access_user_id ON user_zone_access(user_id);

-- Builtin roles (spec.md §3; immutable per RBACService's system-role guard).
INSERT INTO roles (name, description, is_system) VALUES
	('admin', 'Full access to all modules and cities', true),
	('supervisor', 'Ward-scoped attendance management', true),
	('operator', 'Punch recording for assigned wards', true),
	('manager', 'Read-only reporting across assigned cities', true)
ON CONFLICT (name) DO NOTHING;

-- Permission catalogue: one row per (module, action) the middleware chain's
-- RBACMiddleware.Authorize and ScopeMiddleware.Inject calls gate on.
INSERT INTO permissions (module, action, label) VALUES
	('attendance', 'punch', 'Record employee punches'),
	('attendance', 'view', 'View attendance records'),
	('attendance', 'report', 'Run and download attendance reports'),
	('employee', 'view', 'View employee records'),
	('employee', 'manage', 'Create, update, and enrol employees'),
	('location', 'view', 'View cities, zones, wards'),
	('location', 'manage', 'Manage cities, zones, wards'),
	('rbac', 'manage', 'Manage roles, permissions, and assignments'),
	('user', 'view', 'View user accounts'),
	('user', 'manage', 'Create, update, and delete user accounts'),
	('audit', 'view', 'View the audit trail'),
	('messaging', 'send', 'Send attendance reports via WhatsApp')
ON CONFLICT (module, action) DO NOTHING;

-- admin: every permission, unscoped (CityScope.All via a NULL city_id grant
-- path handled at the user_permissions layer; role grants carry no scope
-- column themselves, so admin's city reach comes from city_id IS NULL
-- defaulting to All in ScopeService.ResolveCityScope).
INSERT INTO role_permissions (role_id, permission_id)
SELECT r.id, p.id FROM roles r, permissions p WHERE r.name = 'admin'
ON CONFLICT DO NOTHING;

INSERT INTO role_permissions (role_id, permission_id)
SELECT r.id, p.id FROM roles r, permissions p
WHERE r.name = 'supervisor' AND (p.module, p.action) IN (
	('attendance', 'punch'), ('attendance', 'view'), ('attendance', 'report'),
	('employee', 'view'), ('employee', 'manage'), ('location', 'view')
)
ON CONFLICT DO NOTHING;

INSERT INTO role_permissions (role_id, permission_id)
SELECT r.id, p.id FROM roles r, permissions p
WHERE r.name = 'operator' AND (p.module, p.action) IN (
	('attendance', 'punch'), ('attendance', 'view'),
	('employee', 'view'), ('location', 'view')
)
ON CONFLICT DO NOTHING;

INSERT INTO role_permissions (role_id, permission_id)
SELECT r.id, p.id FROM roles r, permissions p
WHERE r.name = 'manager' AND (p.module, p.action) IN (
	('attendance', 'view'), ('attendance', 'report'),
	('employee', 'view'), ('location', 'view'), ('audit', 'view')
)
ON CONFLICT DO NOTHING;
`,

		"005_attendance.sql": `
CREATE TABLE IF NOT EXISTS attendance (
	id BIGSERIAL PRIMARY KEY,
	emp_id BIGINT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
	ward_id BIGINT NOT NULL REFERENCES wards(id) ON DELETE RESTRICT,
	logical_date DATE NOT NULL,
	punch_in_time TIMESTAMPTZ,
	punch_out_time TIMESTAMPTZ,
	punch_in_image_ref VARCHAR(500),
	punch_out_image_ref VARCHAR(500),
	in_address TEXT,
	out_address TEXT,
	latitude_in DOUBLE PRECISION,
	longitude_in DOUBLE PRECISION,
	latitude_out DOUBLE PRECISION,
	longitude_out DOUBLE PRECISION,
	punched_in_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
	punched_out_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (emp_id, logical_date)
);

CREATE INDEX IF NOT EXISTS idx_attendance_ward_date ON attendance(ward_id, logical_date);
CREATE INDEX IF NOT EXISTS idx_attendance_emp_open ON attendance(emp_id, logical_date) WHERE punch_out_time IS NULL;
`,

		"006_audit.sql": `
CREATE TABLE IF NOT EXISTS audit_logs (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
	action VARCHAR(100) NOT NULL,
	resource VARCHAR(100) NOT NULL,
	resource_id VARCHAR(255),
	outcome VARCHAR(20) NOT NULL,
	details JSONB DEFAULT '{}',
	ip_address VARCHAR(64),
	user_agent TEXT,
	request_id VARCHAR(64),
	duration_ms BIGINT DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_audit_logs_action ON audit_logs(action);
CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id);
`,
	}
}
