package migrations

import "jobtrends/common/database/schema"

var CreateEnrichedJobsTable = schema.Migration{
	Version:     1,
	Description: "Create jobs_enriched table",
	Up: `
		CREATE TABLE IF NOT EXISTS jobs_enriched (
			id UUID,
			job_title String,
			location String,
			salary String,
			job_description String,
			extra Map(String, String),
			has_python Bool,
			has_sql Bool,
			has_excel Bool,
			has_aws Bool,
			is_remote Bool,
			seniority LowCardinality(String),
			min_salary Nullable(Int64),
			salary_bucket LowCardinality(String),
			ingested_at DateTime
		) ENGINE = ReplacingMergeTree(ingested_at)
		PARTITION BY toYYYYMM(ingested_at)
		ORDER BY id
		SETTINGS index_granularity = 8192
	`,
	Down: `DROP TABLE IF EXISTS jobs_enriched`,
}

// All lists every migration in version order.
var All = []schema.Migration{
	CreateEnrichedJobsTable,
}
