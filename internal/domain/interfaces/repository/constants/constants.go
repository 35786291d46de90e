package repoconstants

const CHAT_SESSION_COLLECTION = "chat_sessions"
