package postgres

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// Schema notes: the grant and membership ledgers carry composite primary
// keys, so ON CONFLICT DO NOTHING is the idempotency mechanism for both.
// quiz_results has no uniqueness across (learner, module) - the attempt
// journal keeps full history.
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_accounts_and_courses",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_pipeline_ledgers",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_notifications",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS learners (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'learner',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS courses (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	instructor_id UUID NOT NULL REFERENCES learners(id),
	status TEXT NOT NULL DEFAULT 'Published',
	price NUMERIC(10, 2) NOT NULL DEFAULT 0,
	thumbnail TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_courses_instructor ON courses(instructor_id);

CREATE TABLE IF NOT EXISTS modules (
	id UUID PRIMARY KEY,
	course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	content_link TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_modules_course ON modules(course_id, position);

CREATE TABLE IF NOT EXISTS enrollments (
	learner_id UUID NOT NULL REFERENCES learners(id),
	course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	enrolled_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	PRIMARY KEY (learner_id, course_id)
);

CREATE INDEX IF NOT EXISTS idx_enrollments_course ON enrollments(course_id);
`

const migration001Down = `
DROP TABLE IF EXISTS enrollments;
DROP TABLE IF EXISTS modules;
DROP TABLE IF EXISTS courses;
DROP TABLE IF EXISTS learners;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS quiz_results (
	id UUID PRIMARY KEY,
	learner_id UUID NOT NULL REFERENCES learners(id),
	module_id UUID NOT NULL REFERENCES modules(id) ON DELETE CASCADE,
	score INTEGER NOT NULL CHECK (score >= 0),
	total_questions INTEGER NOT NULL CHECK (total_questions >= 0),
	completed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_quiz_results_learner_module ON quiz_results(learner_id, module_id);
CREATE INDEX IF NOT EXISTS idx_quiz_results_module ON quiz_results(module_id);

CREATE TABLE IF NOT EXISTS badges (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	icon TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS badge_grants (
	learner_id UUID NOT NULL REFERENCES learners(id),
	badge_id UUID NOT NULL REFERENCES badges(id) ON DELETE CASCADE,
	granted_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	PRIMARY KEY (learner_id, badge_id)
);

CREATE TABLE IF NOT EXISTS batches (
	id UUID PRIMARY KEY,
	course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	tier TEXT NOT NULL,
	name TEXT NOT NULL,
	instructor_id UUID NOT NULL REFERENCES learners(id),
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	UNIQUE (course_id, tier)
);

CREATE TABLE IF NOT EXISTS batch_members (
	learner_id UUID NOT NULL REFERENCES learners(id),
	batch_id UUID NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
	joined_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	PRIMARY KEY (learner_id, batch_id)
);

CREATE INDEX IF NOT EXISTS idx_batch_members_batch ON batch_members(batch_id);
`

const migration002Down = `
DROP TABLE IF EXISTS batch_members;
DROP TABLE IF EXISTS batches;
DROP TABLE IF EXISTS badge_grants;
DROP TABLE IF EXISTS badges;
DROP TABLE IF EXISTS quiz_results;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS notifications (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES learners(id),
	title TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL DEFAULT 'info',
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS notifications;
`
