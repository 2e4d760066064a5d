package models

// DtoClassInfo describes one located data-transfer-object declaration
type DtoClassInfo struct {
	ClassName   string
	PackageName string
	FilePath    string
	Fields      []DtoFieldInfo
}

// DtoFieldInfo describes one instance field (or record component) of a DTO
type DtoFieldInfo struct {
	Name        string   // field identifier
	Type        string   // raw declared type, generics included
	Required    bool     // a not-null-like validation annotation is present
	Annotations []string // annotation names found near the declaration
	Line        int      // 1-based line of the declaration
}
