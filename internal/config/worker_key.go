package config

type WorkerKeyStruct struct {
	TouchSessionsQueue string
	PersistAuditQueue  string
}

var WorkerKey = &WorkerKeyStruct{
	TouchSessionsQueue: "touch_sessions_queue",
	PersistAuditQueue:  "persist_audit_queue",
}
