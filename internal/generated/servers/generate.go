package servers

//go:generate oapi-codegen -config ../../../api/server.cfg.yaml ../../../api/openapi.yml
