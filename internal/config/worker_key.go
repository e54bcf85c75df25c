package config

type WorkerKeyStruct struct {
	PersistViolationsQueue string
	ArchiveSnapshotsQueue  string
}

var WorkerKey = &WorkerKeyStruct{
	PersistViolationsQueue: "persist_violations_queue",
	ArchiveSnapshotsQueue:  "archive_snapshots_queue",
}
