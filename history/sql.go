package history

const createExchangeTable = `
CREATE TABLE IF NOT EXISTS exchanges (
  id integer primary key autoincrement,
  time datetime not null,
  player varchar not null,
  model varchar,
  rules_hash varchar,
  prompt text,
  response text,
  error text,
  latency_ms integer
)`

const createRulesTable = `
CREATE TABLE IF NOT EXISTS rules (
  hash varchar primary key,
  text text not null
)`

const insertExchangeStmt = `
INSERT INTO exchanges (time, player, model, rules_hash, prompt, response, error, latency_ms)
VALUES (?,?,?,?,?,?,?,?)
`

const insertRulesStmt = `
INSERT OR IGNORE INTO rules (hash, text) VALUES (?,?)
`

const recentExchangesStmt = `
SELECT id, time, player, model, rules_hash, prompt, response, error, latency_ms
FROM exchanges ORDER BY id DESC LIMIT ?
`
