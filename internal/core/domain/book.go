package domain

type Book struct {
	ID        int64   `json:"id"`
	Titulo    string  `json:"titulo"`
	Autor     string  `json:"autor"`
	Anio      int     `json:"anio"`
	Categoria *string `json:"categoria"`
	Sinopsis  *string `json:"sinopsis"`
	Precio    float64 `json:"precio"`
	Cantidad  int     `json:"cantidad"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
