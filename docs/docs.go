// Package docs holds the swagger spec for the local merchant API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/session": {
            "get": {
                "tags": [
                    "session"
                ],
                "summary": "Current session gate decision",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/navigate": {
            "post": {
                "tags": [
                    "session"
                ],
                "summary": "Navigate to a route",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "description": "Target route",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/auth/login": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Login",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Error"
                    },
                    "403": {
                        "description": "Error"
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "description": "Login credentials",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/auth/logout": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Logout",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    }
                }
            }
        },
        "/auth/verify/resend": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Resend verification email",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Error"
                    }
                }
            }
        },
        "/auth/verify/check": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Check email verification",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Error"
                    },
                    "403": {
                        "description": "Error"
                    }
                }
            }
        },
        "/auth/verify/confirm": {
            "post": {
                "tags": [
                    "auth"
                ],
                "summary": "Confirm email verification",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "description": "Verification code",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/setup": {
            "get": {
                "tags": [
                    "setup"
                ],
                "summary": "Business setup progress",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Error"
                    }
                }
            }
        },
        "/setup/info": {
            "post": {
                "tags": [
                    "setup"
                ],
                "summary": "Submit business info",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "409": {
                        "description": "Error"
                    },
                    "422": {
                        "description": "Error"
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "description": "Business profile",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/setup/categories": {
            "post": {
                "tags": [
                    "setup"
                ],
                "summary": "Add a custom category",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "description": "Category name",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/setup/categories/save": {
            "post": {
                "tags": [
                    "setup"
                ],
                "summary": "Save categories",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/setup/products": {
            "post": {
                "tags": [
                    "setup"
                ],
                "summary": "Add a product",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    }
                },
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "description": "Product",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/setup/products/options": {
            "get": {
                "tags": [
                    "setup"
                ],
                "summary": "Service default options",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/setup/products/done": {
            "post": {
                "tags": [
                    "setup"
                ],
                "summary": "Finish adding products",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/setup/services/{name}": {
            "put": {
                "tags": [
                    "setup"
                ],
                "summary": "Save a service",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "name",
                        "required": true,
                        "type": "string",
                        "description": "Regular or Premium"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "description": "Service",
                        "schema": {
                            "type": "object"
                        }
                    }
                ]
            }
        },
        "/setup/finish": {
            "post": {
                "tags": [
                    "setup"
                ],
                "summary": "Finish business setup",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/orders/incoming": {
            "get": {
                "tags": [
                    "orders"
                ],
                "summary": "Pending orders, newest first",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Error"
                    }
                }
            }
        },
        "/orders/accepted": {
            "get": {
                "tags": [
                    "orders"
                ],
                "summary": "Accepted orders, newest first",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/orders/remote": {
            "get": {
                "tags": [
                    "orders"
                ],
                "summary": "Merchant orders from the REST backend",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "502": {
                        "description": "Error"
                    }
                }
            }
        },
        "/orders/{id}/accept": {
            "post": {
                "tags": [
                    "orders"
                ],
                "summary": "Accept an order",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    },
                    "409": {
                        "description": "Error"
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "required": true,
                        "type": "string",
                        "description": "Order ID"
                    }
                ]
            }
        },
        "/wallet": {
            "get": {
                "tags": [
                    "wallet"
                ],
                "summary": "Wallet balance and transactions",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Error"
                    }
                }
            }
        },
        "/locations/cities": {
            "get": {
                "tags": [
                    "locations"
                ],
                "summary": "Cities in the configured region",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "502": {
                        "description": "Error"
                    }
                }
            }
        },
        "/locations/cities/{code}/barangays": {
            "get": {
                "tags": [
                    "locations"
                ],
                "summary": "Barangays of a city",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "502": {
                        "description": "Error"
                    }
                },
                "parameters": [
                    {
                        "in": "path",
                        "name": "code",
                        "required": true,
                        "type": "string",
                        "description": "PSGC city code"
                    }
                ]
            }
        },
        "/locations/geocode": {
            "get": {
                "tags": [
                    "locations"
                ],
                "summary": "Resolve an address to coordinates",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "422": {
                        "description": "Error"
                    }
                },
                "parameters": [
                    {
                        "in": "query",
                        "name": "address",
                        "required": true,
                        "type": "string",
                        "description": "Street address"
                    }
                ]
            }
        },
        "/health": {
            "get": {
                "tags": [
                    "health"
                ],
                "summary": "Liveness check",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/health/ready": {
            "get": {
                "tags": [
                    "health"
                ],
                "summary": "Readiness check",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "503": {
                        "description": "Error"
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Merchant App API",
	Description:      "Local API driving the merchant app screens: session gate, business setup, orders and wallet.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
