package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Workflow definitions
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				trigger VARCHAR(50) NOT NULL CHECK (trigger IN ('manual', 'schedule', 'event', 'webhook')),
				trigger_config JSONB DEFAULT '{}',
				actions JSONB NOT NULL,
				variables JSONB DEFAULT '{}',
				active BOOLEAN NOT NULL DEFAULT true,
				exclusive BOOLEAN NOT NULL DEFAULT false,
				created_by VARCHAR(255) NOT NULL,
				execution_count BIGINT NOT NULL DEFAULT 0,
				success_count BIGINT NOT NULL DEFAULT 0,
				failure_count BIGINT NOT NULL DEFAULT 0,
				partial_count BIGINT NOT NULL DEFAULT 0,
				last_executed_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_trigger ON workflows(trigger);
			CREATE INDEX idx_workflows_active ON workflows(active);
			CREATE INDEX idx_workflows_created_by ON workflows(created_by);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);

			-- Execution ledger
			CREATE TABLE workflow_executions (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				trigger VARCHAR(50) NOT NULL,
				trigger_data JSONB DEFAULT '{}',
				status VARCHAR(50) NOT NULL,
				results JSONB NOT NULL DEFAULT '[]',
				executed_by VARCHAR(255),
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				finished_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflow_executions_workflow_id ON workflow_executions(workflow_id);
			CREATE INDEX idx_workflow_executions_status ON workflow_executions(status);
			CREATE INDEX idx_workflow_executions_started_at ON workflow_executions(started_at);

			-- Webhook endpoints (outbound targets, inbound secret sources)
			CREATE TABLE webhooks (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				url TEXT NOT NULL,
				events JSONB NOT NULL,
				secret VARCHAR(255) NOT NULL,
				headers JSONB DEFAULT '{}',
				retry JSONB DEFAULT '{}',
				allow_unsigned BOOLEAN NOT NULL DEFAULT false,
				active BOOLEAN NOT NULL DEFAULT true,
				created_by VARCHAR(255) NOT NULL,
				success_count BIGINT NOT NULL DEFAULT 0,
				failure_count BIGINT NOT NULL DEFAULT 0,
				last_triggered_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_webhooks_active ON webhooks(active);

			-- Outbound delivery ledger
			CREATE TABLE webhook_deliveries (
				id UUID PRIMARY KEY,
				webhook_id UUID NOT NULL REFERENCES webhooks(id) ON DELETE CASCADE,
				event VARCHAR(255) NOT NULL,
				payload JSONB DEFAULT '{}',
				status VARCHAR(50) NOT NULL,
				response_code INT,
				response_body TEXT,
				attempt INT NOT NULL DEFAULT 1,
				error TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_webhook_deliveries_webhook_id ON webhook_deliveries(webhook_id);
			CREATE INDEX idx_webhook_deliveries_created_at ON webhook_deliveries(created_at);

			-- Generic CRM records mutated by update_record actions
			CREATE TABLE records (
				id UUID NOT NULL,
				kind VARCHAR(100) NOT NULL,
				attributes JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				PRIMARY KEY (kind, id)
			);

			-- In-app notifications created by create_notification actions
			CREATE TABLE notifications (
				id UUID PRIMARY KEY,
				user_id VARCHAR(255) NOT NULL,
				type VARCHAR(100) NOT NULL,
				title VARCHAR(255) NOT NULL,
				message TEXT NOT NULL DEFAULT '',
				read BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_notifications_user_id ON notifications(user_id);
		`,
		2: `
			-- Automation template catalog
			CREATE TABLE automation_templates (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				category VARCHAR(100) NOT NULL DEFAULT '',
				difficulty VARCHAR(50) NOT NULL DEFAULT 'beginner'
					CHECK (difficulty IN ('beginner', 'intermediate', 'advanced')),
				workflow JSONB NOT NULL,
				required_integrations JSONB NOT NULL DEFAULT '[]',
				public BOOLEAN NOT NULL DEFAULT true,
				popularity BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_automation_templates_category ON automation_templates(category);
			CREATE INDEX idx_automation_templates_popularity ON automation_templates(popularity DESC);
		`,
	}
}
