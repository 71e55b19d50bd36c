package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE tickets (
				id UUID PRIMARY KEY,
				ticket_number VARCHAR(64) NOT NULL UNIQUE,
				department VARCHAR(255) NOT NULL,
				functionality_id VARCHAR(255) NOT NULL,
				workflow_stage VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('pending', 'in-progress', 'blocked', 'resolved', 'closed')),
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_tickets_status ON tickets(status);
			CREATE INDEX idx_tickets_department ON tickets(department);
			CREATE INDEX idx_tickets_functionality_id ON tickets(functionality_id);
			CREATE INDEX idx_tickets_created_at ON tickets(created_at);

			CREATE TABLE functionalities (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				department VARCHAR(255) NOT NULL,
				super BOOLEAN NOT NULL DEFAULT FALSE,
				document JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_functionalities_department ON functionalities(department);
		`,
	}
}
