package db

var schema = `
CREATE TABLE IF NOT EXISTS activities (
	activity_id UUID PRIMARY KEY,
	slug VARCHAR(255) NOT NULL UNIQUE,
	name VARCHAR(255) NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS rental_items (
	rental_item_id UUID PRIMARY KEY,
	activity_id UUID NOT NULL REFERENCES activities(activity_id),
	name VARCHAR(255) NOT NULL,
	price BIGINT NOT NULL CHECK (price >= 0)
);

CREATE TABLE IF NOT EXISTS events (
	event_id UUID PRIMARY KEY,
	activity_id UUID NOT NULL REFERENCES activities(activity_id),
	title VARCHAR(255) NOT NULL,
	location VARCHAR(255) NOT NULL DEFAULT '',
	starts_at TIMESTAMPTZ NOT NULL,
	duration_minutes INT NOT NULL DEFAULT 0,
	price BIGINT CHECK (price >= 0),
	currency CHAR(3) NOT NULL DEFAULT 'eur',
	max_participants INT NOT NULL CHECK (max_participants > 0),
	seats_available INT CHECK (seats_available >= 0 AND seats_available <= max_participants),
	booked_count INT NOT NULL DEFAULT 0 CHECK (booked_count >= 0),
	status VARCHAR(16) NOT NULL DEFAULT 'available',
	privatization_price BIGINT CHECK (privatization_price >= 0),
	discounts JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS events_starts_at_idx ON events (starts_at);

CREATE TABLE IF NOT EXISTS bookings (
	booking_id UUID PRIMARY KEY,
	event_id UUID NOT NULL REFERENCES events(event_id),
	customer_name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(32) NOT NULL,
	quantity INT NOT NULL CHECK (quantity >= 1),
	seats_reserved INT NOT NULL CHECK (seats_reserved >= quantity),
	price BIGINT NOT NULL CHECK (price >= 0),
	add_on_total BIGINT NOT NULL DEFAULT 0,
	currency CHAR(3) NOT NULL,
	add_ons JSONB NOT NULL DEFAULT '[]',
	participants JSONB NOT NULL DEFAULT '[]',
	privatized BOOLEAN NOT NULL DEFAULT false,
	status VARCHAR(16) NOT NULL,
	checkout_session_id VARCHAR(255),
	payment_ref VARCHAR(255),
	cancellation_reason VARCHAR(64),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	confirmed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS bookings_event_id_idx ON bookings (event_id);
CREATE INDEX IF NOT EXISTS bookings_pending_created_at_idx ON bookings (created_at) WHERE status = 'pending';
CREATE UNIQUE INDEX IF NOT EXISTS bookings_checkout_session_id_idx ON bookings (checkout_session_id) WHERE checkout_session_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS audit_log (
	event_id UUID PRIMARY KEY,
	published_at TIMESTAMPTZ NOT NULL,
	event_name VARCHAR(255) NOT NULL,
	event_payload JSONB NOT NULL
);
`
